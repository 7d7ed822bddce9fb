package blackmarket

import (
	"math/rand"
	"time"
)

// Roller is the single source of randomness for the simulation. Every
// stochastic operation (pool sampling, risk rolls, catch rolls) draws
// from the injected Roller so a seeded instance makes outcomes
// reproducible under test.
type Roller interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64

	// WeightedPick returns an index into weights with probability
	// proportional to its weight, or -1 when no weight is positive.
	WeightedPick(weights []float64) int
}

// DiceRoller is the default Roller backed by math/rand.
type DiceRoller struct {
	rng *rand.Rand
}

var _ Roller = (*DiceRoller)(nil)

// NewDiceRoller creates a dice roller seeded from the current time.
func NewDiceRoller() *DiceRoller {
	return NewSeededDiceRoller(time.Now().UnixNano())
}

// NewSeededDiceRoller creates a dice roller with a fixed seed.
func NewSeededDiceRoller(seed int64) *DiceRoller {
	return &DiceRoller{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a uniform draw in [0, 1).
func (dr *DiceRoller) Float64() float64 {
	return dr.rng.Float64()
}

// Roll rolls a dice with the specified number of sides, returning 1..sides.
func (dr *DiceRoller) Roll(sides int) int {
	return dr.rng.Intn(sides) + 1
}

// WeightedPick selects an index with probability proportional to its
// weight. Entries with non-positive weight are never selected.
func (dr *DiceRoller) WeightedPick(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	draw := dr.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		draw -= w
		if draw < 0 {
			return i
		}
	}

	// Floating point slack: fall back to the last positive weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}
