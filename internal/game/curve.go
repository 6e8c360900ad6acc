package game

import (
	"math"
	"time"
)

const (
	ClimbMinMultiplier = 1.0
	ClimbMaxMultiplier = 5.0
	ClimbDuration      = 70 * time.Second
	ClimbCurveTick     = 50 * time.Millisecond
	ClimbFailTick      = 1 * time.Second
	ClimbFailChance    = 0.05 // independent trial per failure tick
)

// ClimbMultiplierAt computes the climb multiplier for a given elapsed time.
// Logarithmic ease: slow early, fast toward the cap. Always recomputed from
// elapsed time, never incremented from a previous sample.
func ClimbMultiplierAt(elapsed time.Duration) float64 {
	p := elapsed.Seconds() / ClimbDuration.Seconds()
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	m := ClimbMinMultiplier + (ClimbMaxMultiplier-ClimbMinMultiplier)*math.Log10(1+9*p)
	if m > ClimbMaxMultiplier {
		m = ClimbMaxMultiplier
	}
	return m
}
