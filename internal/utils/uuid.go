package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for operation ids and
// backup file names.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUID v7, falling back to v4 when the clock source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// Short returns eight random hex characters taken from the tail of a fresh
// identifier; the head of a v7 UUID is the timestamp.
func (g *UUIDGenerator) Short() string {
	id := g.Generate()
	return id[len(id)-8:]
}
