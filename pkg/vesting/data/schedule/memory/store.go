package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elasticvest/vesting-server/pkg/database/query"
	"github.com/elasticvest/vesting-server/pkg/vesting/data/schedule"
)

type store struct {
	mu      sync.Mutex
	records []*schedule.Record
	last    uint64
}

type ById []*schedule.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory schedule.Store
func New() schedule.Store {
	return &store{}
}

// Append implements schedule.Store.Append
func (s *store) Append(_ context.Context, data *schedule.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++

	data.Id = s.last
	data.Index = s.countByAccount(data.Account)
	data.LastUpdatedAt = time.Now()

	c := data.Clone()
	s.records = append(s.records, c)

	return nil
}

// Get implements schedule.Store.Get
func (s *store) Get(_ context.Context, account string, index uint64) (*schedule.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(account, index); item != nil {
		return item.Clone(), nil
	}
	return nil, schedule.ErrScheduleNotFound
}

// GetAllByAccount implements schedule.Store.GetAllByAccount
func (s *store) GetAllByAccount(_ context.Context, account string) ([]*schedule.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*schedule.Record
	for _, item := range s.records {
		if item.Account == account {
			res = append(res, item.Clone())
		}
	}

	if len(res) == 0 {
		return nil, schedule.ErrScheduleNotFound
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Index < res[j].Index
	})

	return res, nil
}

// GetAllByAsset implements schedule.Store.GetAllByAsset
func (s *store) GetAllByAsset(_ context.Context, asset string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*schedule.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*schedule.Record
	for _, item := range s.records {
		if item.Asset == asset {
			items = append(items, item.Clone())
		}
	}

	res := s.filter(items, cursor, limit, direction)
	if len(res) == 0 {
		return nil, schedule.ErrScheduleNotFound
	}

	return res, nil
}

// CountByAccount implements schedule.Store.CountByAccount
func (s *store) CountByAccount(_ context.Context, account string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.countByAccount(account), nil
}

// SetClaimed implements schedule.Store.SetClaimed
func (s *store) SetClaimed(_ context.Context, account string, index uint64, newClaimed uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(account, index)
	if item == nil {
		return schedule.ErrScheduleNotFound
	}

	item.ClaimedAmount = newClaimed
	item.LastUpdatedAt = time.Now()

	return nil
}

// ZeroTotal implements schedule.Store.ZeroTotal
func (s *store) ZeroTotal(_ context.Context, account string, index uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(account, index)
	if item == nil {
		return schedule.ErrScheduleNotFound
	}

	item.TotalAmount = 0
	item.LastUpdatedAt = time.Now()

	return nil
}

func (s *store) find(account string, index uint64) *schedule.Record {
	for _, item := range s.records {
		if item.Account == account && item.Index == index {
			return item
		}
	}
	return nil
}

func (s *store) countByAccount(account string) uint64 {
	var count uint64
	for _, item := range s.records {
		if item.Account == account {
			count++
		}
	}
	return count
}

func (s *store) filter(items []*schedule.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*schedule.Record {
	var start uint64

	start = 0
	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*schedule.Record
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
