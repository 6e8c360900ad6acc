package game

import (
	"math/rand"
	"time"
)

const (
	RoundLength  = 30 * time.Second
	RevealLength = 3 * time.Second
	ParityPayout = 2.0
	OutcomeOdd   = "odd"
	OutcomeEven  = "even"
)

// CurrentRound maps wall-clock time to the monotonically increasing parity
// round index.
func CurrentRound(now time.Time) int64 {
	return now.Unix() / int64(RoundLength.Seconds())
}

// TimeUntilNextRound returns the seconds left in the current round, clamped
// to [1, 30] so a boundary instant never yields zero or a negative countdown.
func TimeUntilNextRound(now time.Time) int64 {
	period := int64(RoundLength.Seconds())
	left := period - now.Unix()%period
	if left < 1 {
		left = 1
	}
	if left > period {
		left = period
	}
	return left
}

// ParityOutcomeFor derives the outcome of a round from nothing but its index.
// Any caller, in any process, at any time gets the same label for the same
// round; settlement recomputes results from the index instead of storing
// them. Future rounds are as computable as past ones.
func ParityOutcomeFor(round int64) string {
	rng := rand.New(rand.NewSource(round))
	if rng.Intn(2) == 0 {
		return OutcomeOdd
	}
	return OutcomeEven
}
