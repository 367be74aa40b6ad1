package memory

import (
	"context"
	"sync"
	"time"

	"github.com/elasticvest/vesting-server/pkg/vesting/data/lockup"
)

type store struct {
	mu      sync.Mutex
	records []*lockup.Record
	last    uint64
}

// New returns a new in memory lockup.Store
func New() lockup.Store {
	return &store{}
}

// Get implements lockup.Store.Get
func (s *store) Get(_ context.Context, asset string) (*lockup.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(asset); item != nil {
		return item.Clone(), nil
	}
	return nil, lockup.ErrLockupNotFound
}

// Add implements lockup.Store.Add
func (s *store) Add(_ context.Context, asset string, delta uint64) error {
	if len(asset) == 0 {
		return lockup.ErrInvalidLockup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(asset); item != nil {
		item.Quantity += delta
		item.LastUpdatedAt = time.Now()
		return nil
	}

	s.last++
	s.records = append(s.records, &lockup.Record{
		Id: s.last,

		Asset:    asset,
		Quantity: delta,

		LastUpdatedAt: time.Now(),
	})

	return nil
}

// Subtract implements lockup.Store.Subtract
func (s *store) Subtract(_ context.Context, asset string, delta uint64) error {
	if len(asset) == 0 {
		return lockup.ErrInvalidLockup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(asset)
	if item == nil {
		if delta == 0 {
			return nil
		}
		return lockup.ErrNegativeLockup
	}

	if item.Quantity < delta {
		return lockup.ErrNegativeLockup
	}

	item.Quantity -= delta
	item.LastUpdatedAt = time.Now()

	return nil
}

func (s *store) find(asset string) *lockup.Record {
	for _, item := range s.records {
		if item.Asset == asset {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
