package server

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hamsterganggang/BetLand/internal/cache"
	"github.com/hamsterganggang/BetLand/internal/database"
	"github.com/hamsterganggang/BetLand/internal/game"
	"github.com/hamsterganggang/BetLand/internal/ledger"
	"github.com/hamsterganggang/BetLand/internal/sportsbook"
)

type FiberServer struct {
	*fiber.App

	db      database.Service
	cache   cache.Service
	store   ledger.Store
	engine  *game.Engine
	sweeper *game.Sweeper
	hub     *game.Hub
	climbs  *game.ClimbManager
}

func New() *FiberServer {
	// Ledger store: Postgres in normal operation, in-memory for local play
	// without a database.
	var store ledger.Store
	var db database.Service
	if getEnv("BETLAND_STORE", "postgres") == "memory" {
		log.Println("[SERVER] Using in-memory ledger store")
		store = ledger.NewMemoryStore()
	} else {
		db = database.New()
		store = ledger.NewPostgresStore(db.Pool())
	}

	// Redis keeps the parity round history; the site runs without it.
	redisService := cache.New()

	hub := game.NewHub()
	engine := game.NewEngine(store, sportsbook.DefaultCatalog())
	sweeper := game.NewSweeper(engine, time.Second)
	climbs := game.NewClimbManager(engine, hub)

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:  "betland",
			AppName:       "betland",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
			IdleTimeout:   120 * time.Second,
			StrictRouting: false,
		}),

		db:      db,
		cache:   redisService,
		store:   store,
		engine:  engine,
		sweeper: sweeper,
		hub:     hub,
		climbs:  climbs,
	}

	// Apply global middleware
	server.App.Use(recover.New())
	server.App.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	go hub.Run()
	sweeper.Start()

	log.Println("[SERVER] Wager engine and settlement sweeper started")

	return server
}

func (s *FiberServer) recorder() game.RoundRecorder {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

// Shutdown stops the sweeper and live sessions, then closes connections.
func (s *FiberServer) Shutdown() error {
	log.Println("[SERVER] Shutting down...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.climbs != nil {
		s.climbs.DisposeAll()
	}

	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
