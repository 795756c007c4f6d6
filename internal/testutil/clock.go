package testutil

import (
	"slices"
	"sync"
)

// DeterministicClock is a resettable logical clock that remembers every
// value it handed out. It satisfies session.Sequencer.
//
// A session stamps each accepted announcement with exactly one Next call,
// so Issued lets a test check that no announcement was stamped twice and
// that skipped duplicates were not stamped at all.
type DeterministicClock struct {
	mu     sync.Mutex
	start  int64
	seq    int64
	issued []int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(0)
}

// NewDeterministicClockAt creates a clock whose first Next returns start+1,
// as a restored session's clock would.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, seq: start}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.issued = append(c.issued, c.seq)
	return c.seq
}

// Current returns the last value handed out, or the start value.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Issued returns every value handed out since creation or the last Reset.
func (c *DeterministicClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.issued)
}

// Reset rewinds the clock to its start value and forgets issued values,
// so a scenario can be replayed with identical seqs.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
	c.issued = nil
}
