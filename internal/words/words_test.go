package words

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(pool []string) *Selector {
	return NewSelector(pool, rand.New(rand.NewPCG(1, 2)))
}

func TestDrawReturnsDistinctWords(t *testing.T) {
	s := newTestSelector(DefaultPool)

	for i := 0; i < 50; i++ {
		got := s.Draw(2)
		require.Len(t, got, 2)
		assert.NotEqual(t, got[0], got[1])
		assert.Contains(t, DefaultPool, got[0])
		assert.Contains(t, DefaultPool, got[1])
	}
}

func TestDrawClampsToPoolSize(t *testing.T) {
	s := newTestSelector([]string{"one", "two", "three"})

	got := s.Draw(10)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"one", "two", "three"}, got)
}

func TestDrawAvoidingPrefersFreshWords(t *testing.T) {
	pool := []string{"a", "b", "c", "d"}
	s := newTestSelector(pool)

	seen := map[string]bool{"a": true, "b": true}
	for i := 0; i < 20; i++ {
		got := s.DrawAvoiding(2, seen)
		require.Len(t, got, 2)
		assert.ElementsMatch(t, []string{"c", "d"}, got)
	}
}

func TestDrawAvoidingFallsBackWhenPoolExhausted(t *testing.T) {
	pool := []string{"a", "b", "c"}
	s := newTestSelector(pool)

	seen := map[string]bool{"a": true, "b": true}
	got := s.DrawAvoiding(2, seen)
	require.Len(t, got, 2)
	// "c" is the only fresh word; the second slot reuses history.
	assert.Contains(t, got, "c")
	assert.NotEqual(t, got[0], got[1])
}
