package mocks

import (
	"sync"

	"github.com/mcoot/netpong/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned in order; once a queue is empty the results
// fall back to the deterministic low end of the requested range.
type MockRandom struct {
	mu      sync.Mutex
	ints    []int
	strings []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remain
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	result := r.ints[0]
	r.ints = r.ints[1:]
	return result
}

// String returns the next queued result, or the first length characters of
// alphabet (repeating its first character) if none remain
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) > 0 {
		result := r.strings[0]
		r.strings = r.strings[1:]
		return result
	}
	if length <= 0 || alphabet == "" {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[0]
	}
	return string(result)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ints = append(r.ints, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}
