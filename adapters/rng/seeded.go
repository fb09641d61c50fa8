package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/fredricj/SingleCellProteogenomics/ports"
)

// SeededSource implements ports.RNG with named deterministic streams.
// The stream name is folded into the seed so independent stages of one
// run draw from independent sequences.
type SeededSource struct{}

// New creates a new seeded RNG source
func New() ports.RNG {
	return &SeededSource{}
}

// SeededStream returns a rand.Rand whose sequence is fully determined by
// the (name, seed) pair
func (s *SeededSource) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	h := fnv.New64a()
	h.Write([]byte(name))
	mixed := int64(h.Sum64()) ^ seed
	return rand.New(rand.NewSource(mixed)), nil
}
