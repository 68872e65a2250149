package practice

import "math/rand/v2"

// Random is the source of shuffles and choices. *rand.Rand satisfies it,
// which lets tests pass a seeded generator.
type Random interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

type globalRandom struct{}

// NewRandom returns a Random backed by the runtime's goroutine-safe generator.
func NewRandom() Random {
	return globalRandom{}
}

func (globalRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func (globalRandom) IntN(n int) int { return rand.IntN(n) }
