package testutil

import "sync"

// SequenceSource is a dice.Source that replays a fixed list of values,
// cycling when exhausted. Values >= n are clamped to n-1 and negative values
// to 0, so a sequence can say "max" or "min" without knowing n.
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequenceSource returns a SequenceSource replaying values.
//
// Precondition: len(values) > 0.
func NewSequenceSource(values ...int) *SequenceSource {
	if len(values) == 0 {
		panic("testutil: NewSequenceSource requires at least one value")
	}
	return &SequenceSource{values: values}
}

// Intn returns the next value clamped to [0, n).
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	s.mu.Lock()
	v := s.values[s.next%len(s.values)]
	s.next++
	s.mu.Unlock()
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}

// Draws reports how many values have been consumed.
func (s *SequenceSource) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
