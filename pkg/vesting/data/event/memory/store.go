package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/event"
)

type store struct {
	mu      sync.Mutex
	records []*event.Record
	last    uint64
}

type ById []*event.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory event.Store
func New() event.Store {
	return &store{}
}

// Put implements event.Store.Put
func (s *store) Put(_ context.Context, data *event.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++

	data.Id = s.last
	data.CreatedAt = time.Now()

	c := data.Clone()
	s.records = append(s.records, c)

	return nil
}

// GetAllByAccount implements event.Store.GetAllByAccount
func (s *store) GetAllByAccount(_ context.Context, account string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*event.Record
	for _, item := range s.records {
		if item.Account == account {
			items = append(items, item.Clone())
		}
	}

	res := s.filter(items, cursor, limit, direction)
	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}

	return res, nil
}

func (s *store) filter(items []*event.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*event.Record {
	var start uint64

	start = 0
	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*event.Record
	for _, item := range items {
		if item.Id > start && direction == query.Ascending {
			res = append(res, item)
		}
		if item.Id < start && direction == query.Descending {
			res = append(res, item)
		}
	}

	if direction == query.Descending {
		sort.Sort(sort.Reverse(ById(res)))
	} else {
		sort.Sort(ById(res))
	}

	if len(res) >= int(limit) {
		return res[:limit]
	}

	return res
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
