package engine

import (
	"math/bits"
)

const (
	// WeekSeconds is the number of seconds in a vesting week
	WeekSeconds = 604800
)

// linearRelease computes the amount of a schedule releasable at now (unix
// seconds), growing linearly between start and end and capped at total.
// Callers guarantee end > start for any schedule that reaches this point.
func linearRelease(total, now, start, end uint64) uint64 {
	if now <= start {
		return 0
	}
	if now >= end {
		return total
	}

	elapsed := now - start
	duration := end - start

	// The 128-bit intermediate avoids overflow on large totals. The
	// quotient always fits in 64 bits because elapsed < duration.
	hi, lo := bits.Mul64(total, elapsed)
	quo, _ := bits.Div64(hi, lo, duration)
	return quo
}
