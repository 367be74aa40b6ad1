package memory

import (
	"testing"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup/tests"
)

func TestLockupMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
