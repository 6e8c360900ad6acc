package sportsbook

import (
	"testing"
	"time"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	matches := catalog.List()

	if len(matches) == 0 {
		t.Fatal("default catalog is empty")
	}

	t.Run("unique ids", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, m := range matches {
			if seen[m.ID] {
				t.Errorf("duplicate match id %s", m.ID)
			}
			seen[m.ID] = true
		}
	})

	t.Run("every match has odds", func(t *testing.T) {
		for _, m := range matches {
			if len(m.Odds) == 0 {
				t.Errorf("match %s has no odds", m.ID)
			}
			for side, odds := range m.Odds {
				if odds <= 1.0 {
					t.Errorf("match %s side %s has odds %v, want > 1.0", m.ID, side, odds)
				}
			}
		}
	})

	t.Run("includes a closed fixture", func(t *testing.T) {
		closed := false
		for _, m := range matches {
			if !m.Biddable {
				closed = true
			}
		}
		if !closed {
			t.Error("expected at least one non-biddable fixture")
		}
	})
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := DefaultCatalog()

	m, ok := catalog.Lookup("m-1001")
	if !ok {
		t.Fatal("m-1001 not found")
	}
	if m.Sport != "football" {
		t.Errorf("sport = %s, want football", m.Sport)
	}

	if _, ok := catalog.Lookup("m-9999"); ok {
		t.Error("unknown match found")
	}
}

func TestCatalog_OddsFor(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name    string
		matchID string
		side    string
		want    float64
		ok      bool
	}{
		{name: "known side", matchID: "m-1001", side: "home", want: 1.85, ok: true},
		{name: "draw quoted for football", matchID: "m-1001", side: "draw", want: 3.40, ok: true},
		{name: "no draw in cricket", matchID: "m-1003", side: "draw", ok: false},
		{name: "unknown match", matchID: "m-9999", side: "home", ok: false},
		{name: "unknown side", matchID: "m-1001", side: "corner", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.OddsFor(tt.matchID, tt.side)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("odds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalog_ListPreservesLoadOrder(t *testing.T) {
	matches := []Match{
		{ID: "a", Odds: map[string]float64{"home": 1.5}, Biddable: true, StartsAt: time.Now()},
		{ID: "b", Odds: map[string]float64{"home": 2.5}, Biddable: true, StartsAt: time.Now()},
		{ID: "c", Odds: map[string]float64{"home": 3.5}, Biddable: true, StartsAt: time.Now()},
	}
	catalog := NewCatalog(matches)

	got := catalog.List()
	if len(got) != 3 {
		t.Fatalf("list has %d matches, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Errorf("list[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
}
