package ports

import (
	"math/rand"
)

// RNG provides seeded random number streams for deterministic sampling.
// The process-wide base seed is fixed once per run; each chain derives its
// own independent stream so parallel execution cannot reorder draws within
// a chain.
type RNG interface {
	// SeededStream creates a deterministic generator for a named operation.
	SeededStream(name string, seed int64) *rand.Rand

	// ChainStream creates the generator for one chain of a run. The same
	// (baseSeed, chain) pair always yields the identical sequence.
	ChainStream(baseSeed int64, chain int) *rand.Rand
}
