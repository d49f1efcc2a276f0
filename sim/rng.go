package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible ensemble run.
// Two runs with the same SimulationKey and identical parameters and config
// MUST produce bit-for-bit identical spike trains, regardless of worker count.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Stream names ===

// StreamRealization returns the stream name for realization i.
// The stream index is the realization index.
func StreamRealization(i int) string {
	return fmt.Sprintf("realization_%d", i)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG streams per realization
// (or any other named consumer).
//
// Derivation formula: seed(name) = masterSeed XOR fnv1a64(name).
//
// ForStream caches and is NOT thread-safe. NewStream does not touch the cache
// and may be called from any goroutine.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns the cached stream for name, creating it on first use.
// Never returns nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := p.NewStream(name)
	p.streams[name] = rng
	return rng
}

// NewStream returns a fresh stream for name positioned at its first draw.
func (p *PartitionedRNG) NewStream(name string) *rand.Rand {
	return rand.New(rand.NewSource(p.Seed(name)))
}

// ForRealization returns a fresh stream for realization i. Safe for concurrent use.
func (p *PartitionedRNG) ForRealization(i int) *rand.Rand {
	return p.NewStream(StreamRealization(i))
}

// Seed returns the derived seed for name.
func (p *PartitionedRNG) Seed(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
