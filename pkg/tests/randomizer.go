package tests

import (
	"math/rand/v2"
)

// Randomizer генерирует данные для тестов на случайном рынке. Сид пишется
// в лог теста, чтобы упавший прогон можно было повторить.
type Randomizer struct {
	Seed uint64

	random *rand.Rand
}

func NewRandomizer(seed uint64) Randomizer {
	return Randomizer{
		Seed:   seed,
		random: rand.New(rand.NewPCG(seed, seed>>1)), //nolint:gosec // for tests
	}
}

func (r Randomizer) Float64() float64 {
	return r.random.Float64()
}

func (r Randomizer) Bool() bool {
	return r.random.IntN(2) == 0 //nolint:mnd // skip
}

// Between возвращает число из [lo, hi].
func (r Randomizer) Between(lo, hi int) int {
	return lo + r.random.IntN(hi-lo+1)
}

// Spread возвращает value, отклонённое на долю не больше spread в любую сторону.
func (r Randomizer) Spread(value, spread float64) float64 {
	return value * (1 - spread + 2*spread*r.random.Float64())
}
