package words

import (
	"math/rand/v2"
	"sync"
)

// Selector draws unique random subsets from a fixed word pool. It is safe for
// concurrent use, though in practice all draws happen on the hub loop.
type Selector struct {
	mu   sync.Mutex
	pool []string
	rng  *rand.Rand
}

func NewSelector(pool []string, rng *rand.Rand) *Selector {
	return &Selector{pool: pool, rng: rng}
}

// Draw returns n distinct words from the pool, at most len(pool).
func (s *Selector) Draw(n int) []string {
	return s.DrawAvoiding(n, nil)
}

// DrawAvoiding returns n distinct words, preferring words absent from seen.
// When the pool minus seen is too small, seen words are used to fill the rest,
// so a draw always succeeds as long as the pool itself is large enough.
func (s *Selector) DrawAvoiding(n int, seen map[string]bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.pool) {
		n = len(s.pool)
	}

	fresh := make([]string, 0, len(s.pool))
	used := make([]string, 0, len(seen))
	for _, w := range s.pool {
		if seen[w] {
			used = append(used, w)
		} else {
			fresh = append(fresh, w)
		}
	}

	s.rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	if len(fresh) < n {
		s.rng.Shuffle(len(used), func(i, j int) { used[i], used[j] = used[j], used[i] })
		fresh = append(fresh, used...)
	}

	out := make([]string, n)
	copy(out, fresh[:n])
	return out
}

// PoolSize reports how many words the selector can draw from.
func (s *Selector) PoolSize() int {
	return len(s.pool)
}
