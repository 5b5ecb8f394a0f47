package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-backend/internal/models"
)

const (
	verificationStatsKey = "submissions:stats"
	statsTTL             = 30 * time.Second
)

var client *redis.Client

// Init initializes the Redis connection. The service degrades gracefully
// when Redis is unavailable: every helper below no-ops on a nil client.
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// GetVerificationStats returns cached dashboard stats, if present
func GetVerificationStats(ctx context.Context) (*models.VerificationStats, bool) {
	if client == nil {
		return nil, false
	}
	raw, err := client.Get(ctx, verificationStatsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var stats models.VerificationStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// SetVerificationStats caches dashboard stats for a short window
func SetVerificationStats(ctx context.Context, stats *models.VerificationStats) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	client.Set(ctx, verificationStatsKey, raw, statsTTL)
}

// InvalidateVerificationStats drops the cached stats after a transition so
// the pending counters move immediately
func InvalidateVerificationStats(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, verificationStatsKey)
}
