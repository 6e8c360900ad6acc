package sportsbook

import (
	"sync"
	"time"
)

// Match is one fixed-odds fixture. Odds maps a side label ("home", "away",
// "draw") to its locked coefficient. Odds shown here are quotes; the
// coefficient a wager actually pays is the one copied onto the wager at bet
// time.
type Match struct {
	ID       string             `json:"id"`
	Sport    string             `json:"sport"`
	Home     string             `json:"home"`
	Away     string             `json:"away"`
	StartsAt time.Time          `json:"starts_at"`
	Odds     map[string]float64 `json:"odds"`
	Biddable bool               `json:"biddable"`
}

// Catalog is the read-only fixture list. The betting engine only ever reads
// from it; fixtures and odds are loaded once at startup.
type Catalog struct {
	mu      sync.RWMutex
	matches map[string]Match
	order   []string
}

func NewCatalog(matches []Match) *Catalog {
	c := &Catalog{matches: make(map[string]Match)}
	for _, m := range matches {
		c.matches[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c
}

// DefaultCatalog returns the built-in fixture list used when no external
// feed is configured.
func DefaultCatalog() *Catalog {
	kickoff := time.Now().Add(6 * time.Hour)
	return NewCatalog([]Match{
		{
			ID: "m-1001", Sport: "football", Home: "Mumbai FC", Away: "Delhi United",
			StartsAt: kickoff,
			Odds:     map[string]float64{"home": 1.85, "draw": 3.40, "away": 4.20},
			Biddable: true,
		},
		{
			ID: "m-1002", Sport: "football", Home: "Chennai City", Away: "Goa Rovers",
			StartsAt: kickoff.Add(2 * time.Hour),
			Odds:     map[string]float64{"home": 2.10, "draw": 3.10, "away": 3.50},
			Biddable: true,
		},
		{
			ID: "m-1003", Sport: "cricket", Home: "Punjab Kings XI", Away: "Kolkata Tigers",
			StartsAt: kickoff.Add(4 * time.Hour),
			Odds:     map[string]float64{"home": 1.65, "away": 2.25},
			Biddable: true,
		},
		{
			ID: "m-1004", Sport: "cricket", Home: "Hyderabad Chargers", Away: "Rajasthan Royals XI",
			StartsAt: kickoff.Add(-3 * time.Hour),
			Odds:     map[string]float64{"home": 1.95, "away": 1.90},
			Biddable: false, // already in play
		},
	})
}

// Lookup returns the match and whether it exists.
func (c *Catalog) Lookup(matchID string) (Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[matchID]
	return m, ok
}

// OddsFor returns the locked coefficient for a side of a match. ok is false
// when the match or side is unknown.
func (c *Catalog) OddsFor(matchID, side string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[matchID]
	if !ok {
		return 0, false
	}
	odds, ok := m.Odds[side]
	return odds, ok
}

// List returns all fixtures in load order.
func (c *Catalog) List() []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Match, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.matches[id])
	}
	return out
}
