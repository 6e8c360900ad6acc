package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

const (
	keyParityOutcome = "parity:round:"
	keyParityHistory = "parity:history"
	historyTTL       = 24 * time.Hour
)

// Service keeps hot game data in Redis: every revealed parity outcome goes
// into a capped history list so clients see recent rounds across restarts.
type Service interface {
	GetClient() *redis.Client
	RecordParityOutcome(ctx context.Context, round int64, outcome string) error
	ParityHistory(ctx context.Context, limit int64) ([]string, error)
	Health() map[string]string
	Close() error
}

type service struct {
	client *redis.Client
}

var (
	redisAddr     = getEnv("REDIS_URL", "localhost:6379")
	redisPassword = getEnv("REDIS_PASSWORD", "")
	redisDB       = getEnvAsInt("REDIS_DB", 0)
	cacheInstance *service
)

func New() Service {
	if cacheInstance != nil {
		return cacheInstance
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           redisDB,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("[CACHE] Redis connection failed: %v", err)
		log.Println("[CACHE] Running without round history cache")
		return nil
	}

	log.Println("[CACHE] Redis connected successfully")

	cacheInstance = &service{
		client: client,
	}

	return cacheInstance
}

func (s *service) GetClient() *redis.Client {
	return s.client
}

// RecordParityOutcome stores the outcome of one revealed round and pushes it
// onto the capped history list. Writing the same round twice just overwrites
// the same value; the outcome is a pure function of the round index.
func (s *service) RecordParityOutcome(ctx context.Context, round int64, outcome string) error {
	key := keyParityOutcome + strconv.FormatInt(round, 10)
	if err := s.client.Set(ctx, key, outcome, historyTTL).Err(); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, keyParityHistory, outcome)
	pipe.LTrim(ctx, keyParityHistory, 0, 99)
	pipe.Expire(ctx, keyParityHistory, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// ParityHistory returns the most recent outcomes, newest first.
func (s *service) ParityHistory(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.client.LRange(ctx, keyParityHistory, 0, limit-1).Result()
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	_, err := s.client.Ping(ctx).Result()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("redis down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "Redis is healthy"

	poolStats := s.client.PoolStats()
	stats["hits"] = strconv.FormatUint(uint64(poolStats.Hits), 10)
	stats["misses"] = strconv.FormatUint(uint64(poolStats.Misses), 10)
	stats["timeouts"] = strconv.FormatUint(uint64(poolStats.Timeouts), 10)
	stats["total_conns"] = strconv.FormatUint(uint64(poolStats.TotalConns), 10)
	stats["idle_conns"] = strconv.FormatUint(uint64(poolStats.IdleConns), 10)
	stats["stale_conns"] = strconv.FormatUint(uint64(poolStats.StaleConns), 10)

	return stats
}

func (s *service) Close() error {
	log.Println("[CACHE] Disconnecting from Redis")
	return s.client.Close()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
