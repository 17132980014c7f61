package mocks

import (
	"fmt"

	"github.com/gamehall/gamehall/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidIndex   int

	// ShortIDResults is a queue of results to return from ShortID
	ShortIDResults []string
	shortIDIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// UUID returns the next queued result, or a sequential placeholder if the
// queue is exhausted
func (r *MockRandom) UUID() string {
	if r.uuidIndex >= len(r.UUIDResults) {
		r.uuidIndex++
		return fmt.Sprintf("mock-uuid-%d", r.uuidIndex)
	}
	result := r.UUIDResults[r.uuidIndex]
	r.uuidIndex++
	return result
}

// ShortID returns the next queued result, or a sequential placeholder if
// the queue is exhausted
func (r *MockRandom) ShortID() string {
	if r.shortIDIndex >= len(r.ShortIDResults) {
		r.shortIDIndex++
		return fmt.Sprintf("room%04d", r.shortIDIndex)
	}
	result := r.ShortIDResults[r.shortIDIndex]
	r.shortIDIndex++
	return result
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.UUIDResults = append(r.UUIDResults, values...)
}

// QueueShortID adds values to the ShortID result queue
func (r *MockRandom) QueueShortID(values ...string) {
	r.ShortIDResults = append(r.ShortIDResults, values...)
}
