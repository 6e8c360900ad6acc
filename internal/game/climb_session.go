package game

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// CurveSample is one point of the climb curve, kept for replaying the run to
// a reconnecting client.
type CurveSample struct {
	Elapsed    float64 `json:"elapsed"`
	Multiplier float64 `json:"multiplier"`
}

type climbStopReply struct {
	resp ClimbStopResponse
}

type climbCommand struct {
	kind  string // "stop" or "dispose"
	reply chan climbStopReply
}

// ClimbSession drives one player's climb run. All session state is owned by
// the run goroutine; Stop requests and failure ticks arrive as events on the
// same loop, so exactly one of them settles the session and no tick can
// mutate state after teardown.
type ClimbSession struct {
	accountID string
	stake     int64
	engine    *Engine

	curveTick time.Duration
	failTick  time.Duration
	failRoll  func() bool
	notify    func(ClimbStateMessage)
	onEnd     func()

	startTime time.Time
	cmds      chan climbCommand
	done      chan struct{}
}

// newClimbSession wires a session but does not start it; the stake has
// already been debited by the caller.
func newClimbSession(engine *Engine, accountID string, stake int64, notify func(ClimbStateMessage), onEnd func()) *ClimbSession {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ClimbSession{
		accountID: accountID,
		stake:     stake,
		engine:    engine,
		curveTick: ClimbCurveTick,
		failTick:  ClimbFailTick,
		failRoll:  func() bool { return rng.Float64() < ClimbFailChance },
		notify:    notify,
		onEnd:     onEnd,
		startTime: time.Now(),
		cmds:      make(chan climbCommand),
		done:      make(chan struct{}),
	}
}

func (s *ClimbSession) start() {
	go s.run()
}

// Multiplier returns the current curve value. The curve is a pure function of
// elapsed time, so this needs no session lock.
func (s *ClimbSession) Multiplier() float64 {
	return ClimbMultiplierAt(time.Since(s.startTime))
}

func (s *ClimbSession) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Stop asks the run loop to cash out. A Stop that loses the race against a
// failure tick (or a second Stop) gets a no-op failure, never a second
// settlement.
func (s *ClimbSession) Stop(ctx context.Context) ClimbStopResponse {
	reply := make(chan climbStopReply, 1)
	select {
	case s.cmds <- climbCommand{kind: "stop", reply: reply}:
		select {
		case r := <-reply:
			return r.resp
		case <-ctx.Done():
			return ClimbStopResponse{Message: "Stop timed out"}
		}
	case <-s.done:
		return ClimbStopResponse{Message: "No active climb"}
	case <-ctx.Done():
		return ClimbStopResponse{Message: "Stop timed out"}
	}
}

// Dispose tears the session down without a cashout (player disconnected).
// The run is recorded as failed; the stake was forfeit at start.
func (s *ClimbSession) Dispose() {
	select {
	case s.cmds <- climbCommand{kind: "dispose"}:
	case <-s.done:
	}
}

func (s *ClimbSession) run() {
	curveTicker := time.NewTicker(s.curveTick)
	failTicker := time.NewTicker(s.failTick)
	defer curveTicker.Stop()
	defer failTicker.Stop()
	defer close(s.done)
	defer func() {
		if s.onEnd != nil {
			s.onEnd()
		}
	}()

	var samples []CurveSample

	for {
		select {
		case <-curveTicker.C:
			elapsed := time.Since(s.startTime)
			mult := ClimbMultiplierAt(elapsed)
			samples = append(samples, CurveSample{Elapsed: elapsed.Seconds(), Multiplier: mult})
			if s.notify != nil {
				s.notify(ClimbStateMessage{Multiplier: mult, Elapsed: elapsed.Seconds(), Running: true})
			}

		case <-failTicker.C:
			if !s.failRoll() {
				continue
			}
			s.engine.FailClimb(context.Background(), s.accountID, s.stake)
			if s.notify != nil {
				s.notify(ClimbStateMessage{
					Multiplier: s.Multiplier(),
					Elapsed:    time.Since(s.startTime).Seconds(),
					Failed:     true,
				})
			}
			log.Printf("[CLIMB] session for %s failed after %d samples", s.accountID, len(samples))
			return

		case cmd := <-s.cmds:
			switch cmd.kind {
			case "stop":
				resp := s.engine.StopClimb(context.Background(), s.accountID, s.stake, s.Multiplier())
				if cmd.reply != nil {
					cmd.reply <- climbStopReply{resp: resp}
				}
				return
			case "dispose":
				s.engine.FailClimb(context.Background(), s.accountID, s.stake)
				log.Printf("[CLIMB] session for %s disposed", s.accountID)
				return
			}
		}
	}
}
