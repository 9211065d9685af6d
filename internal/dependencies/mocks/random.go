package mocks

import (
	"github.com/jmarban/suitparty-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// IntRangeResults is a queue of results to return from IntRange
	IntRangeResults []int
	intRangeIndex   int

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// NoShuffle disables shuffling so order is preserved (the default)
	NoShuffle bool
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{NoShuffle: true}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// IntRange returns the next queued result, or lo if none remaining
func (r *MockRandom) IntRange(lo, hi int) int {
	if r.intRangeIndex >= len(r.IntRangeResults) {
		return lo
	}
	result := r.IntRangeResults[r.intRangeIndex]
	r.intRangeIndex++
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// Shuffle reverses the elements unless NoShuffle is set, so tests can tell
// a shuffled order from the input order deterministically
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	if r.NoShuffle {
		return
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueIntRange adds values to the IntRange result queue
func (r *MockRandom) QueueIntRange(values ...int) {
	r.IntRangeResults = append(r.IntRangeResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
	r.IntRangeResults = nil
	r.intRangeIndex = 0
	r.StringResults = nil
	r.stringIndex = 0
}
