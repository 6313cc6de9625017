package sampler

import (
	"hash/fnv"
	"math/rand"

	"github.com/mbedward/invasive-grasses-models/ports"
)

// StreamRNG derives deterministic math/rand streams from a base seed.
// Chain streams are seeded as baseSeed+chain, so a fixed seed and chain
// count reproduce every chain's sequence regardless of how the chains are
// scheduled onto workers.
type StreamRNG struct{}

// NewStreamRNG creates the default RNG adapter.
func NewStreamRNG() ports.RNG {
	return StreamRNG{}
}

// SeededStream creates a generator for a named operation, mixing the name
// into the seed so distinct operations never share a stream.
func (StreamRNG) SeededStream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

// ChainStream creates the generator for one chain of a run.
func (StreamRNG) ChainStream(baseSeed int64, chain int) *rand.Rand {
	return rand.New(rand.NewSource(baseSeed + int64(chain)))
}
