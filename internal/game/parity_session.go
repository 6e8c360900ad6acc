package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// RoundRecorder keeps revealed parity outcomes for the history feed. The
// Redis cache implements it; sessions tolerate a nil recorder.
type RoundRecorder interface {
	RecordParityOutcome(ctx context.Context, round int64, outcome string) error
	ParityHistory(ctx context.Context, limit int64) ([]string, error)
}

// ParitySession follows the 30-second round clock for one connected player.
// A once-per-second tick recomputes the countdown; crossing a round boundary
// reveals the new round's outcome, refreshes balance and history (which runs
// the settlement sweep) and opens the 3-second reveal window.
//
// The reveal window is a pair of timestamps, not a counting timer: a tick
// arriving mid-window sees revealEnd still in the future and cannot
// re-trigger the reveal.
type ParitySession struct {
	accountID string
	engine    *Engine
	recorder  RoundRecorder
	notify    func(ParityStateMessage)

	tick time.Duration
	now  func() time.Time

	mu          sync.Mutex
	lastRound   int64
	lastOutcome string
	revealStart time.Time
	revealEnd   time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewParitySession(engine *Engine, recorder RoundRecorder, accountID string, notify func(ParityStateMessage)) *ParitySession {
	return &ParitySession{
		accountID: accountID,
		engine:    engine,
		recorder:  recorder,
		notify:    notify,
		tick:      time.Second,
		now:       time.Now,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *ParitySession) Start() {
	s.mu.Lock()
	s.lastRound = CurrentRound(s.now())
	s.mu.Unlock()
	go s.run()
}

// Stop halts the ticker; once Stop returns no further tick runs.
func (s *ParitySession) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

// InReveal reports whether the reveal animation window is open.
func (s *ParitySession) InReveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return !s.revealEnd.IsZero() && !now.Before(s.revealStart) && now.Before(s.revealEnd)
}

func (s *ParitySession) run() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.onTick(context.Background())
		case <-s.stopChan:
			log.Printf("[PARITY] session for %s stopped", s.accountID)
			return
		}
	}
}

func (s *ParitySession) onTick(ctx context.Context) {
	now := s.now()
	round := CurrentRound(now)

	s.mu.Lock()
	boundary := round != s.lastRound && !now.Before(s.revealEnd)
	if boundary {
		s.lastRound = round
		s.lastOutcome = ParityOutcomeFor(round)
		s.revealStart = now
		s.revealEnd = now.Add(RevealLength)
	}
	outcome := s.lastOutcome
	revealing := !now.Before(s.revealStart) && now.Before(s.revealEnd) && !s.revealEnd.IsZero()
	s.mu.Unlock()

	if boundary {
		if s.recorder != nil {
			if err := s.recorder.RecordParityOutcome(ctx, round, outcome); err != nil {
				log.Printf("[PARITY] recording outcome for round %d failed: %v", round, err)
			}
		}
		log.Printf("[PARITY] round %d revealed %s", round, outcome)
	}

	// Balance() settles anything due as a side effect, so the player sees
	// their parity wins land with the reveal.
	balance, err := s.engine.Balance(ctx, s.accountID)
	if err != nil {
		log.Printf("[PARITY] balance refresh for %s failed: %v", s.accountID, err)
		return
	}

	if s.notify == nil {
		return
	}
	msg := ParityStateMessage{
		Round:       round,
		SecondsLeft: TimeUntilNextRound(now),
		Revealing:   revealing,
		Balance:     balance.Balance,
	}
	if revealing {
		msg.Outcome = outcome
	}
	if s.recorder != nil {
		if history, err := s.recorder.ParityHistory(ctx, 10); err == nil {
			msg.History = history
		}
	}
	s.notify(msg)
}
