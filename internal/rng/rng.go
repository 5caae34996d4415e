// Package rng provides the seeded pseudo-random stream shared by every generator.
// Nothing in this package touches math/rand or the clock, so a seed fully
// determines the sequence of draws on every platform.
package rng

import "unicode/utf16"

const increment uint32 = 0x6D2B79F5

// SeedHash folds an arbitrary string into a 32-bit seed using h = h*31 + c
// over the UTF-16 code units of s.
func SeedHash(s string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(unit)
	}
	return h
}

// Stream is a small-state generator producing floats in [0,1).
type Stream struct {
	state uint32
	draws int
}

func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// StreamFrom returns the draw function of a fresh stream seeded with seed.
func StreamFrom(seed uint32) func() float64 {
	return New(seed).Float64
}

// Float64 advances the stream and returns the next value in [0,1).
func (s *Stream) Float64() float64 {
	s.state += increment
	t := s.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	s.draws++
	return float64(t^t>>14) / 4294967296.0
}

// Draws reports how many values have been consumed so far.
func (s *Stream) Draws() int {
	return s.draws
}

// Intn returns a value in [0,n). It consumes exactly one draw; n <= 0 yields 0
// without drawing.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Range returns a value in [min,max] inclusive using one draw.
func (s *Stream) Range(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + s.Intn(max-min+1)
}

// Chance reports whether the next draw falls below p.
func (s *Stream) Chance(p float64) bool {
	return s.Float64() < p
}

// Shuffle performs a Fisher-Yates shuffle from the top index down, one draw
// per step.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}
