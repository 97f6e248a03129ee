package epinet

import (
	"math/rand/v2"
	"sync"
)

// lockedSource makes a rand.Source safe for concurrent use.
// A *rand.Rand holds no state besides its source, so wrapping the source is enough
// to share one generator between goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

// NewRand returns a concurrency-safe generator seeded with seed.
// Equal seeds give equal sequences as long as calls are not interleaved.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)})
}
