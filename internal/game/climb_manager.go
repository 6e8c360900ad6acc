package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// ClimbManager tracks the one live climb session each player may have.
// Grounding the registry here keeps the sessions single-owner: the manager
// only creates, looks up and removes them.
type ClimbManager struct {
	engine *Engine
	hub    *Hub

	mu       sync.Mutex
	sessions map[string]*ClimbSession
}

func NewClimbManager(engine *Engine, hub *Hub) *ClimbManager {
	return &ClimbManager{
		engine:   engine,
		hub:      hub,
		sessions: make(map[string]*ClimbSession),
	}
}

// Start debits the stake and spins up the session actor. A player with a run
// already in flight is rejected before any money moves.
func (m *ClimbManager) Start(ctx context.Context, accountID string, stake int64) ClimbStartResponse {
	m.mu.Lock()
	if _, exists := m.sessions[accountID]; exists {
		m.mu.Unlock()
		return ClimbStartResponse{Message: "Climb already running"}
	}
	m.mu.Unlock()

	resp := m.engine.StartClimb(ctx, accountID, stake)
	if !resp.Success {
		return resp
	}

	var notify func(ClimbStateMessage)
	if m.hub != nil {
		hub := m.hub
		notify = func(msg ClimbStateMessage) {
			hub.SendToAccount(accountID, WSMessage{Type: "climb_tick", Data: msg})
		}
	}

	session := newClimbSession(m.engine, accountID, stake, notify, func() {
		m.remove(accountID)
	})

	m.mu.Lock()
	if _, exists := m.sessions[accountID]; exists {
		// Lost a start race; refund this debit and keep the first session.
		m.mu.Unlock()
		m.engine.refund(ctx, accountID, stake)
		return ClimbStartResponse{Message: "Climb already running"}
	}
	m.sessions[accountID] = session
	m.mu.Unlock()

	session.start()
	log.Printf("[CLIMB] session started for %s (stake %d)", accountID, stake)
	return resp
}

// Stop cashes out the player's running session.
func (m *ClimbManager) Stop(ctx context.Context, accountID string) ClimbStopResponse {
	m.mu.Lock()
	session, ok := m.sessions[accountID]
	m.mu.Unlock()
	if !ok {
		return ClimbStopResponse{Message: "No active climb"}
	}
	return session.Stop(ctx)
}

// State reports the player's current multiplier, if a run is live.
func (m *ClimbManager) State(accountID string) (ClimbStateMessage, bool) {
	m.mu.Lock()
	session, ok := m.sessions[accountID]
	m.mu.Unlock()
	if !ok || !session.Running() {
		return ClimbStateMessage{}, false
	}
	return ClimbStateMessage{
		Multiplier: session.Multiplier(),
		Elapsed:    time.Since(session.startTime).Seconds(),
		Running:    true,
	}, true
}

// DisposeFor tears down the player's session on disconnect.
func (m *ClimbManager) DisposeFor(accountID string) {
	m.mu.Lock()
	session, ok := m.sessions[accountID]
	m.mu.Unlock()
	if ok {
		session.Dispose()
	}
}

// DisposeAll tears down every live session, for shutdown.
func (m *ClimbManager) DisposeAll() {
	m.mu.Lock()
	sessions := make([]*ClimbSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Dispose()
	}
}

func (m *ClimbManager) remove(accountID string) {
	m.mu.Lock()
	delete(m.sessions, accountID)
	m.mu.Unlock()
}
