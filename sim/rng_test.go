package sim

import (
	"math"
	"math/rand"
	"sync"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_KeysExtremeSeeds(t *testing.T) {
	// Keys at the int64 extremes still derive distinct, reproducible streams
	for _, seed := range []int64{0, -1, math.MaxInt64, math.MinInt64} {
		a := NewPartitionedRNG(NewSimulationKey(seed)).ForRealization(3).Int63()
		b := NewPartitionedRNG(NewSimulationKey(seed)).ForRealization(3).Int63()
		if a != b {
			t.Errorf("seed %d: realization 3 not reproducible (%d vs %d)", seed, a, b)
		}
		if got := NewPartitionedRNG(NewSimulationKey(seed)).Key(); int64(got) != seed {
			t.Errorf("seed %d: Key() = %d", seed, got)
		}
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Same key+realization produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	s1 := rng1.ForRealization(7)
	s2 := rng2.ForRealization(7)
	for i := 0; i < 5; i++ {
		a, b := s1.NormFloat64(), s2.NormFloat64()
		if a != b {
			t.Errorf("draw %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_RealizationIsolation(t *testing.T) {
	// Drawing from realization 0 doesn't affect realization 1
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	rngB := NewPartitionedRNG(NewSimulationKey(42))

	a0 := rngA.ForStream(StreamRealization(0))
	for i := 0; i < 10; i++ {
		a0.Float64()
	}
	aFirst := rngA.ForStream(StreamRealization(1)).Float64()
	bFirst := rngB.ForStream(StreamRealization(1)).Float64()

	if aFirst != bFirst {
		t.Errorf("realization 1 first value = %v, want %v (isolation broken)", aFirst, bFirst)
	}
}

func TestPartitionedRNG_DistinctRealizationsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	seen := make(map[float64]int)
	for i := 0; i < 100; i++ {
		v := rng.ForRealization(i).Float64()
		if j, ok := seen[v]; ok {
			t.Fatalf("realizations %d and %d start with the same draw %v", j, i, v)
		}
		seen[v] = i
	}
}

func TestPartitionedRNG_ForStreamCachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	r1 := rng.ForStream("x")
	r2 := rng.ForStream("x")
	if r1 != r2 {
		t.Error("ForStream returned different instances for same name")
	}
}

func TestPartitionedRNG_NewStreamIsFresh(t *testing.T) {
	// NewStream never returns the cached, partially consumed stream
	rng := NewPartitionedRNG(NewSimulationKey(42))
	cached := rng.ForStream(StreamRealization(3))
	first := cached.Float64()
	cached.Float64()

	fresh := rng.ForRealization(3)
	if fresh == cached {
		t.Fatal("ForRealization returned the cached instance")
	}
	if got := fresh.Float64(); got != first {
		t.Errorf("fresh stream first draw = %v, want %v", got, first)
	}
}

func TestPartitionedRNG_SeedDerivation(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(12345))
	name := StreamRealization(0)
	want := int64(12345) ^ fnv1a64(name)
	if got := rng.Seed(name); got != want {
		t.Errorf("Seed(%q) = %d, want %d", name, got, want)
	}

	direct := rand.New(rand.NewSource(want))
	stream := rng.ForRealization(0)
	for i := 0; i < 5; i++ {
		if a, b := stream.Int63(), direct.Int63(); a != b {
			t.Errorf("draw %d: stream %d, direct %d", i, a, b)
		}
	}
}

func TestPartitionedRNG_ForRealizationConcurrent(t *testing.T) {
	// ForRealization is safe from many goroutines and stays deterministic
	rng := NewPartitionedRNG(NewSimulationKey(9))
	const n = 32
	got := make([]float64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = rng.ForRealization(i).NormFloat64()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if want := rng.ForRealization(i).NormFloat64(); got[i] != want {
			t.Errorf("realization %d: concurrent draw %v, sequential %v", i, got[i], want)
		}
	}
}

func TestPartitionedRNG_LazyInitialization(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if len(rng.streams) != 0 {
		t.Errorf("New PartitionedRNG has %d streams, want 0", len(rng.streams))
	}

	rng.ForStream("a")
	rng.ForRealization(1)
	if len(rng.streams) != 1 {
		t.Errorf("after one ForStream call, have %d streams, want 1", len(rng.streams))
	}
}

// === fnv1a64 Tests ===

func TestFnv1a64_Collision(t *testing.T) {
	hashes := make(map[int64]string)
	for i := 0; i < 1000; i++ {
		name := StreamRealization(i)
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestStreamRealization(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{0, "realization_0"},
		{1, "realization_1"},
		{999, "realization_999"},
	}

	for _, tt := range tests {
		if got := StreamRealization(tt.id); got != tt.want {
			t.Errorf("StreamRealization(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// === Benchmark ===

func BenchmarkPartitionedRNG_ForRealization(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForRealization(i % 1000)
	}
}
