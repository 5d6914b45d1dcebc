package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fraglog/internal/config"
	"fraglog/internal/db"
	"fraglog/internal/httpapi"
	"fraglog/internal/ingest"
	"fraglog/internal/logging"
	"fraglog/internal/processor"
	"fraglog/internal/queue"
	"fraglog/internal/rank"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config load failed: %v", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Errorf("db connection failed: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := db.NewStore(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Errorf("schema setup failed: %v", err)
		os.Exit(1)
	}

	ingestor := ingest.New(st)
	ranks := rank.NewService(st)

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Errorf("invalid redis url: %v", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		q := queue.NewRedisQueue(redisClient, cfg.RedisQueue)
		proc := processor.NewLogProcessor(ctx, ingestor)

		go func() {
			if err := q.Consume(ctx, cfg.WorkerCount, cfg.JobBufferSize, proc.Handle); err != nil && ctx.Err() == nil {
				logger.Errorf("queue consumption ended: %v", err)
			}
		}()
	}

	api := httpapi.New(ingestor, ranks, st)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("http api listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("http server failed: %v", err)
		os.Exit(1)
	}
}
