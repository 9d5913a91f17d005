package testutil

import "fmt"

// SequentialIDs generates predictable run IDs for golden comparisons.
//
// IDs are formatted as UUIDs so they pass the same parsing as real ones:
//
//	00000000-0000-0000-0000-000000000001
//
// Not safe for concurrent use.
type SequentialIDs struct {
	n int
}

// NewSequentialIDs creates a generator whose first ID ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next ID.
func (g *SequentialIDs) NewID() string {
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}
