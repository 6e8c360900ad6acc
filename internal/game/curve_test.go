package game

import (
	"math"
	"testing"
	"time"
)

func TestClimbMultiplierAt_Endpoints(t *testing.T) {
	t.Run("starts at minimum", func(t *testing.T) {
		got := ClimbMultiplierAt(0)
		if math.Abs(got-ClimbMinMultiplier) > 1e-9 {
			t.Errorf("ClimbMultiplierAt(0) = %v, want %v", got, ClimbMinMultiplier)
		}
	})

	t.Run("caps at maximum after full duration", func(t *testing.T) {
		got := ClimbMultiplierAt(ClimbDuration)
		if math.Abs(got-ClimbMaxMultiplier) > 1e-9 {
			t.Errorf("ClimbMultiplierAt(%v) = %v, want %v", ClimbDuration, got, ClimbMaxMultiplier)
		}
	})

	t.Run("stays capped past the duration", func(t *testing.T) {
		got := ClimbMultiplierAt(ClimbDuration + 30*time.Second)
		if got != ClimbMaxMultiplier {
			t.Errorf("ClimbMultiplierAt past duration = %v, want %v", got, ClimbMaxMultiplier)
		}
	})

	t.Run("negative elapsed clamps to minimum", func(t *testing.T) {
		got := ClimbMultiplierAt(-5 * time.Second)
		if got != ClimbMinMultiplier {
			t.Errorf("ClimbMultiplierAt(-5s) = %v, want %v", got, ClimbMinMultiplier)
		}
	})
}

func TestClimbMultiplierAt_MonotonicNonDecreasing(t *testing.T) {
	prev := ClimbMultiplierAt(0)
	for s := 1; s <= 80; s++ {
		cur := ClimbMultiplierAt(time.Duration(s) * time.Second)
		if cur < prev {
			t.Fatalf("curve decreased at %ds: %v -> %v", s, prev, cur)
		}
		prev = cur
	}
}

func TestClimbMultiplierAt_AlwaysInRange(t *testing.T) {
	for ms := 0; ms <= 90000; ms += 250 {
		got := ClimbMultiplierAt(time.Duration(ms) * time.Millisecond)
		if got < ClimbMinMultiplier || got > ClimbMaxMultiplier {
			t.Fatalf("ClimbMultiplierAt(%dms) = %v, outside [%v, %v]",
				ms, got, ClimbMinMultiplier, ClimbMaxMultiplier)
		}
	}
}

func TestClimbMultiplierAt_SlowEarlyFastLate(t *testing.T) {
	// Logarithmic ease: the first half of the run gains more than the second.
	early := ClimbMultiplierAt(35*time.Second) - ClimbMultiplierAt(0)
	late := ClimbMultiplierAt(70*time.Second) - ClimbMultiplierAt(35*time.Second)
	if early <= late {
		t.Errorf("expected front-loaded gains, got early %v, late %v", early, late)
	}
}
