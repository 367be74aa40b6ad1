package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearRelease(t *testing.T) {
	const (
		start uint64 = 1000
		end   uint64 = 2200 // 1200 second vesting period
	)

	for _, tc := range []struct {
		total    uint64
		now      uint64
		expected uint64
	}{
		{1200, 900, 0},
		{1200, start, 0},
		{1200, start + 300, 300},
		{1200, start + 600, 600},
		{1200, end, 1200},
		{1200, end + 300, 1200},
		{1000, start + 300, 250},
		{1, start + 599, 0},
		{1, start + 601, 0},
		{1, start + 1199, 0},
		{1, end, 1},
	} {
		assert.Equal(t, tc.expected, linearRelease(tc.total, tc.now, start, end))
	}
}

func TestLinearRelease_LargeTotals(t *testing.T) {
	const (
		start uint64 = 0
		end   uint64 = 4 * WeekSeconds
	)

	// The product total*elapsed overflows 64 bits here
	total := uint64(math.MaxUint64)

	assert.Equal(t, total/4, linearRelease(total, WeekSeconds, start, end))
	assert.Equal(t, total/2, linearRelease(total, 2*WeekSeconds, start, end))
	assert.Equal(t, total, linearRelease(total, 5*WeekSeconds, start, end))
}
