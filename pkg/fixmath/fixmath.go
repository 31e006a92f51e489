// Package fixmath holds the small integer helpers the flight core leans
// on: an exact integer square root and range clamping. The self-test
// bands and the mixer ceiling are defined on exact integer results, so
// floating point stand-ins are not an option here.
package fixmath

import "golang.org/x/exp/constraints"

// ISqrt32 returns the integer square root of v: the largest r with
// r*r <= v.
func ISqrt32(v uint32) uint32 {
	var r uint32
	bit := uint32(1) << 30
	for bit > v {
		bit >>= 2
	}
	for bit != 0 {
		if v >= r+bit {
			v -= r + bit
			r = r>>1 + bit
		} else {
			r >>= 1
		}
		bit >>= 2
	}
	return r
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
