package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/gofiber/contrib/websocket"

	"github.com/hamsterganggang/BetLand/internal/game"
)

func (s *FiberServer) RegisterFiberRoutes() {
	// Apply CORS middleware
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Accept,Authorization,Content-Type,X-Account-Id",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	s.App.Get("/health", s.healthHandler)

	api := s.App.Group("/api/v1", s.resolveAccount)

	parity := api.Group("/parity")
	parity.Get("/state", s.parityStateHandler)
	parity.Post("/bet", s.parityBetHandler)

	climb := api.Group("/climb")
	climb.Post("/start", s.climbStartHandler)
	climb.Post("/stop", s.climbStopHandler)
	climb.Get("/state", s.climbStateHandler)

	roulette := api.Group("/roulette")
	roulette.Post("/spin", s.rouletteSpinHandler)

	sports := api.Group("/sports")
	sports.Get("/matches", s.sportsMatchesHandler)
	sports.Post("/bet", s.sportsBetHandler)
	sports.Post("/cancel", s.sportsCancelHandler)

	account := api.Group("/account")
	account.Get("/balance", s.balanceHandler)
	account.Get("/history", s.historyHandler)

	// WebSocket route
	s.App.Get("/ws", websocket.New(s.gameWebSocketHandler))
}

// resolveAccount is the session/auth collaborator boundary: the caller
// supplies a stable account id and the engine trusts it. Nothing downstream
// ever caches a "current user".
func (s *FiberServer) resolveAccount(c *fiber.Ctx) error {
	accountID := c.Get("X-Account-Id")
	if accountID == "" {
		return c.Status(401).JSON(fiber.Map{
			"error": "X-Account-Id header is required",
		})
	}
	if _, err := s.engine.EnsureAccount(c.Context(), accountID); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to resolve account",
		})
	}
	c.Locals("accountID", accountID)
	return c.Next()
}

func accountID(c *fiber.Ctx) string {
	id, _ := c.Locals("accountID").(string)
	return id
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	health := fiber.Map{
		"game": fiber.Map{
			"status":            "running",
			"round":             game.CurrentRound(time.Now()),
			"connected_clients": s.hub.GetClientCount(),
		},
	}
	if s.db != nil {
		health["database"] = s.db.Health()
	}
	if s.cache != nil {
		health["cache"] = s.cache.Health()
	}
	return c.JSON(health)
}
