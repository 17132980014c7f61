package random

import "github.com/google/uuid"

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// UUID returns a new random UUID string
	UUID() string

	// ShortID returns a short random identifier suitable for room ids
	ShortID() string
}

// ShortIDLength is the length of identifiers returned by ShortID
const ShortIDLength = 8

// UUIDRandom implements Random using github.com/google/uuid
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// UUID returns a new random UUID string
func (r *UUIDRandom) UUID() string {
	return uuid.NewString()
}

// ShortID returns the first ShortIDLength characters of a random UUID
func (r *UUIDRandom) ShortID() string {
	return uuid.NewString()[:ShortIDLength]
}
