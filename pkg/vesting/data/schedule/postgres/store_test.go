package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule/tests"

	postgrestest "github.com/elasticvest/vesting-server/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
		CREATE TABLE elasticvest__core_schedule(
			id SERIAL NOT NULL PRIMARY KEY,

			account TEXT NOT NULL,
			schedule_index BIGINT NOT NULL,

			asset TEXT NOT NULL,

			total_amount BIGINT NOT NULL,
			claimed_amount BIGINT NOT NULL,

			start_time BIGINT NOT NULL,
			cliff_time BIGINT NOT NULL,
			end_time BIGINT NOT NULL,

			is_fixed BOOL NOT NULL,

			last_updated_at TIMESTAMP WITH TIME ZONE,

			CONSTRAINT elasticvest__core_schedule__uniq__account__and__schedule_index UNIQUE (account, schedule_index)
		);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE elasticvest__core_schedule;
	`
)

var (
	testStore schedule.Store
	teardown  func()
)

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	var cleanUpFunc func()
	db, cleanUpFunc, err := postgrestest.StartPostgresDB(testPool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}
	defer db.Close()

	if err := createTestTables(db); err != nil {
		logrus.StandardLogger().WithError(err).Error("Error creating test tables")
		cleanUpFunc()
		os.Exit(1)
	}

	testStore = New(db)
	teardown = func() {
		if pc := recover(); pc != nil {
			cleanUpFunc()
			panic(pc)
		}

		if err := resetTestTables(db); err != nil {
			logrus.StandardLogger().WithError(err).Error("Error resetting test tables")
			cleanUpFunc()
			os.Exit(1)
		}
	}

	code := m.Run()
	cleanUpFunc()
	os.Exit(code)
}

func TestSchedulePostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}

func createTestTables(db *sql.DB) error {
	_, err := db.Exec(tableCreate)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not create test tables")
		return err
	}
	return nil
}

func resetTestTables(db *sql.DB) error {
	_, err := db.Exec(tableDestroy)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not drop test tables")
		return err
	}

	return createTestTables(db)
}
