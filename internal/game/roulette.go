package game

import "math/rand"

const RouletteMinStake int64 = 1000

// RouletteSlot is one slot of the fixed 8-slot wheel.
type RouletteSlot struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// Four miss slots and four ascending paid slots. Each spin is one uniform
// pick over the table, independent of rounds and wall clock.
var RouletteTable = []RouletteSlot{
	{Label: "miss", Multiplier: 0},
	{Label: "x2", Multiplier: 2},
	{Label: "miss", Multiplier: 0},
	{Label: "x3", Multiplier: 3},
	{Label: "miss", Multiplier: 0},
	{Label: "x4", Multiplier: 4},
	{Label: "miss", Multiplier: 0},
	{Label: "x5", Multiplier: 5},
}

// SpinWheel draws one slot using the given RNG. The engine passes its own
// seeded source; tests pass a fixed one.
func SpinWheel(rng *rand.Rand) RouletteSlot {
	return RouletteTable[rng.Intn(len(RouletteTable))]
}
