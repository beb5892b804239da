package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

// TestSeededSource_Reproducible verifies the invariant: identical seeds
// produce identical draw sequences.
func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(20), b.Intn(20), "draw %d diverged", i)
	}
}

func TestSeededSource_DifferentSeedsDiverge(t *testing.T) {
	a := dice.NewSeededSource(1)
	b := dice.NewSeededSource(2)
	same := true
	for i := 0; i < 50; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			same = false
		}
	}
	assert.False(t, same, "distinct seeds must not replay the same stream")
}

func TestSeededSource_ZeroSeedRemapped(t *testing.T) {
	a := dice.NewSeededSource(0)
	b := dice.NewSeededSource(1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, b.Intn(20), a.Intn(20))
	}
}

// TestSeededSource_Property_InRange checks the range postcondition for
// arbitrary seeds and bounds.
func TestSeededSource_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(1, 10000).Draw(rt, "n")
		src := dice.NewSeededSource(seed)
		for i := 0; i < 10; i++ {
			v := src.Intn(n)
			assert.GreaterOrEqual(rt, v, 0)
			assert.Less(rt, v, n)
		}
	})
}

// TestLoggedSource_Delegates verifies the wrapper draws from the wrapped
// source without perturbing the stream.
func TestLoggedSource_Delegates(t *testing.T) {
	plain := dice.NewSeededSource(7)
	logged := dice.NewLoggedSource(dice.NewSeededSource(7), zap.NewNop())
	for i := 0; i < 50; i++ {
		assert.Equal(t, plain.Intn(20), logged.Intn(20))
	}
}

func TestLoggedSource_NilArgsPanic(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedSource(nil, zap.NewNop()) })
	assert.Panics(t, func() { dice.NewLoggedSource(dice.NewSeededSource(1), nil) })
}
