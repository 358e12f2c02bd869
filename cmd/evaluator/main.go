package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"followup_engine_backend/internal/events"
	"followup_engine_backend/internal/followup"
	"followup_engine_backend/internal/followup/domain"
	"followup_engine_backend/internal/scheduler"
	"followup_engine_backend/platform/config"
	"followup_engine_backend/platform/db"
	"followup_engine_backend/platform/logger"
	"followup_engine_backend/platform/metrics"
	"followup_engine_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const migrationsDir = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting evaluator", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg, migrationsDir); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

	redisOpt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid redis url", "error", err)
		panic("invalid redis url: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpt)
	defer func() { _ = redisClient.Close() }()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	m := metrics.New(prometheus.DefaultRegisterer)

	followupModule, err := followup.NewModule(pool, redisClient, eventBus, m, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize followup module", "error", err)
		panic("failed to initialize followup module: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	followupModule.SubscribeReplyFollowups(eventBus, evaluationQueue{client: client}, domain.SessionBreak, log)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	go runCycleTicker(ctx, client, cfg.GetEvaluationInterval(), log)

	worker, err := scheduler.NewWorker(cfg, followupModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

// evaluationQueue adapts the scheduler client to the module's queue interface.
type evaluationQueue struct {
	client *scheduler.Client
}

func (q evaluationQueue) ScheduleAt(ctx context.Context, leadID string, runAt time.Time) error {
	return q.client.ScheduleEvaluation(ctx, scheduler.EvaluateLeadPayload{LeadID: leadID}, runAt)
}

// runCycleTicker enqueues one evaluation cycle per interval. Cycles run on
// the worker so any replica can pick them up; the per-lead lock keeps
// overlapping cycles from double-evaluating.
func runCycleTicker(ctx context.Context, client *scheduler.Client, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := scheduler.EvaluationCyclePayload{CycleID: uuid.NewString()}
			if err := client.EnqueueCycle(ctx, payload); err != nil {
				log.Error("failed to enqueue evaluation cycle", "error", err)
			}
		}
	}
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server stopped", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
