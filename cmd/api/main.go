package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hamsterganggang/BetLand/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	srv := server.New()
	srv.RegisterFiberRoutes()

	done := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("[MAIN] Shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			log.Printf("[MAIN] Shutdown error: %v", err)
		}
		srv.App.Shutdown()
		close(done)
	}()

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}
	if err := srv.Listen(":" + strconv.Itoa(port)); err != nil {
		log.Fatalf("[MAIN] Server error: %v", err)
	}

	<-done
	log.Println("[MAIN] Server stopped")
}
