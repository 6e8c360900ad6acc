package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/hamsterganggang/BetLand/internal/game"
	"github.com/hamsterganggang/BetLand/internal/ledger"
)

// Parity handlers

func (s *FiberServer) parityStateHandler(c *fiber.Ctx) error {
	now := time.Now()
	state := fiber.Map{
		"round":        game.CurrentRound(now),
		"seconds_left": game.TimeUntilNextRound(now),
	}
	if rec := s.recorder(); rec != nil {
		if history, err := rec.ParityHistory(c.Context(), 10); err == nil {
			state["history"] = history
		}
	}
	return c.JSON(state)
}

func (s *FiberServer) parityBetHandler(c *fiber.Ctx) error {
	var body struct {
		Choice string `json:"choice"`
		Stake  int64  `json:"stake"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := s.engine.PlaceParityBet(c.Context(), accountID(c), body.Choice, body.Stake)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

// Climb handlers

func (s *FiberServer) climbStartHandler(c *fiber.Ctx) error {
	var body struct {
		Stake int64 `json:"stake"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := s.climbs.Start(c.Context(), accountID(c), body.Stake)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *FiberServer) climbStopHandler(c *fiber.Ctx) error {
	resp := s.climbs.Stop(c.Context(), accountID(c))
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *FiberServer) climbStateHandler(c *fiber.Ctx) error {
	state, ok := s.climbs.State(accountID(c))
	if !ok {
		return c.Status(404).JSON(fiber.Map{
			"error": "No active climb",
		})
	}
	return c.JSON(state)
}

// Roulette handler

func (s *FiberServer) rouletteSpinHandler(c *fiber.Ctx) error {
	var body struct {
		Stake int64 `json:"stake"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := s.engine.SpinRoulette(c.Context(), accountID(c), body.Stake)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

// Sportsbook handlers

func (s *FiberServer) sportsMatchesHandler(c *fiber.Ctx) error {
	return c.JSON(s.engine.Catalog().List())
}

func (s *FiberServer) sportsBetHandler(c *fiber.Ctx) error {
	var body struct {
		MatchID string `json:"match_id"`
		Side    string `json:"side"`
		Stake   int64  `json:"stake"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := s.engine.PlaceSportsBet(c.Context(), accountID(c), body.MatchID, body.Side, body.Stake)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *FiberServer) sportsCancelHandler(c *fiber.Ctx) error {
	var body struct {
		WagerID string `json:"wager_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.WagerID == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Wager ID is required",
		})
	}

	resp := s.engine.CancelSportsBet(c.Context(), accountID(c), body.WagerID)
	if !resp.Success {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

// Account handlers

func (s *FiberServer) balanceHandler(c *fiber.Ctx) error {
	resp, err := s.engine.Balance(c.Context(), accountID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read balance",
		})
	}
	return c.JSON(resp)
}

func (s *FiberServer) historyHandler(c *fiber.Ctx) error {
	gameKind := ledger.GameKind(c.Query("game", string(ledger.GameParity)))
	wagers, err := s.engine.History(c.Context(), accountID(c), gameKind)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read history",
		})
	}
	return c.JSON(fiber.Map{
		"game":   gameKind,
		"wagers": wagers,
	})
}

// WebSocket handler

func (s *FiberServer) gameWebSocketHandler(conn *websocket.Conn) {
	acct := conn.Query("account_id")
	if acct == "" {
		conn.Close()
		return
	}
	if _, err := s.engine.EnsureAccount(context.Background(), acct); err != nil {
		log.Printf("[WS] Failed to resolve account %s: %v", acct, err)
		conn.Close()
		return
	}

	log.Printf("[WS] New connection from account: %s", acct)
	client := s.hub.RegisterClient(conn, acct)

	// One parity session per connected player; its ticks land on this
	// player's connections only.
	session := game.NewParitySession(s.engine, s.recorder(), acct, func(msg game.ParityStateMessage) {
		s.hub.SendToAccount(acct, game.WSMessage{Type: "parity_tick", Data: msg})
	})
	session.Start()
	defer func() {
		session.Stop()
		s.climbs.DisposeFor(acct)
		s.hub.UnregisterClient(client)
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[WS] Read error for account %s: %v", acct, err)
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}
		var clientMsg map[string]interface{}
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			continue
		}
		msgType, ok := clientMsg["type"].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "climb_stop":
			resp := s.climbs.Stop(context.Background(), acct)
			respJSON, _ := json.Marshal(game.WSMessage{Type: "climb_stop", Data: resp})
			conn.WriteMessage(websocket.TextMessage, respJSON)

		case "ping":
			pongJSON, _ := json.Marshal(map[string]string{"type": "pong"})
			conn.WriteMessage(websocket.TextMessage, pongJSON)
		}
	}
}
