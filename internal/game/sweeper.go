package game

import (
	"context"
	"log"
	"time"
)

// Sweeper owns the periodic settlement sweep: one ticker per process driving
// Engine.SettleDueParity. The engine's opportunistic sweeps share the same
// mutex, so every pending wager settles exactly once no matter how many
// callers race.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	stopChan chan struct{}
}

func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sweeper{
		engine:   engine,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Println("[SWEEP] Settlement sweeper started")
	for {
		select {
		case <-ticker.C:
			s.engine.SettleDueParity(context.Background())
		case <-s.stopChan:
			log.Println("[SWEEP] Settlement sweeper stopped")
			return
		}
	}
}
