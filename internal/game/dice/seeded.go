package dice

import (
	"math/rand"
	"sync"
)

// seededSource implements Source using a seeded math/rand generator guarded
// by a mutex. It exists so the balance simulator and tests can replay exact
// roll sequences from a fixed seed.
//
// Invariant: two seededSources with the same seed produce identical
// sequences of Intn results for identical call sequences.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a reproducible Source seeded with seed.
// A zero seed is remapped to 1 so the zero value of a config field does not
// silently produce the degenerate all-zeros stream.
//
// Postcondition: every value returned by Intn is in [0, n).
func NewSeededSource(seed int64) Source {
	if seed == 0 {
		seed = 1
	}
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n) from the seeded stream.
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
