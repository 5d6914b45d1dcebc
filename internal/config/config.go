package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime configuration for the log ingestion service.
type Config struct {
	DBURL         string
	HTTPAddr      string
	RedisURL      string // empty disables the queue consumer
	RedisQueue    string
	WorkerCount   int
	JobBufferSize int
}

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBURL:      os.Getenv("DB_URL"),
		HTTPAddr:   os.Getenv("HTTP_ADDR"),
		RedisURL:   os.Getenv("REDIS_URL"),
		RedisQueue: os.Getenv("REDIS_QUEUE"),
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if cfg.RedisQueue == "" {
		cfg.RedisQueue = "ingest_logs"
	}

	cfg.WorkerCount = intEnv("WORKER_COUNT", 1)
	cfg.JobBufferSize = intEnv("JOB_BUFFER_SIZE", 16)

	return cfg, nil
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
