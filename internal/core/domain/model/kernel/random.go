package kernel

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource yields integers in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewSeededRandomSource returns a PCG-backed source. A zero seed is replaced with the current time.
func NewSeededRandomSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // non-negative
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1)) //nolint:gosec // grid placement, not security
}

// LockedRandomSource makes a source safe to share between goroutines.
type LockedRandomSource struct {
	mu  sync.Mutex
	src RandomSource
}

func NewLockedRandomSource(src RandomSource) *LockedRandomSource {
	return &LockedRandomSource{src: src}
}

func (l *LockedRandomSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}
