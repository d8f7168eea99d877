package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/virginus01/afobata-core/internal/config"
	"github.com/virginus01/afobata-core/internal/ledger"
	"github.com/virginus01/afobata-core/internal/obs"
	"github.com/virginus01/afobata-core/internal/queue"
	"github.com/virginus01/afobata-core/internal/repo"
	"github.com/virginus01/afobata-core/internal/resilience"
	"github.com/virginus01/afobata-core/internal/revenue"
)

// domainEventsKind is the queue kind all outbox events are dispatched on.
const domainEventsKind = "domain-events"

type dispatchEnvelope struct {
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	outbox := repo.OutboxRepo{Pool: pool}
	enqueuer := queue.Enqueuer{
		R:           redisClient,
		Prefix:      cfg.QueueRedisPrefix,
		DedupTTL:    cfg.IdempotencyTTL,
		MaxAttempts: cfg.QueueMaxAttempts,
	}
	go pollOutbox(ctx, outbox, enqueuer, logger)

	sinkURL := envOrDefault("EVENT_SINK_URL", "")
	sink := &resilience.HTTPClient{
		Client:      &http.Client{},
		Breaker:     resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).WithTarget("event-sink").WithLogger(logger),
		BaseBackoff: cfg.RetryBase,
		MaxAttempts: cfg.RetryMaxAttempts,
		Jitter:      cfg.RetryJitterPercent,
		Timeout:     cfg.OutboundTimeout,
	}

	eventsWorker := queue.Worker{
		R:           redisClient,
		Prefix:      cfg.QueueRedisPrefix,
		Kind:        domainEventsKind,
		Concurrency: cfg.QueueConcurrency,
		RetryBase:   cfg.RetryBase,
		RetryJitter: cfg.RetryJitterPercent,
		Store:       queue.NewStore(pool),
		Logger:      &logger,
		Handler: func(jobCtx context.Context, task queue.Task) error {
			return deliverEvent(jobCtx, sink, sinkURL, task.Payload, logger)
		},
	}
	go func() {
		if err := eventsWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("events worker stopped with error")
		}
	}()

	logger.Info().Str("kind", domainEventsKind).Msg("worker starting")
	runReconciliation(ctx, cfg, pool, logger)
	logger.Info().Msg("worker shutdown complete")
}

// pollOutbox drains undelivered events into the redis queue. Enqueue is
// deduplicated on the event id, so a crash between enqueue and mark is safe.
func pollOutbox(ctx context.Context, outbox repo.OutboxRepo, enqueuer queue.Enqueuer, logger zerolog.Logger) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		events, err := outbox.ListUndispatched(ctx, 100)
		if err != nil {
			logger.Error().Err(err).Msg("list outbox events")
			continue
		}
		for _, ev := range events {
			payload, err := json.Marshal(dispatchEnvelope{
				Topic:       ev.Topic,
				AggregateID: ev.AggregateID,
				Payload:     ev.Payload,
				OccurredAt:  ev.OccurredAt,
			})
			if err != nil {
				logger.Error().Err(err).Int64("event_id", ev.ID).Msg("encode outbox event")
				continue
			}
			err = enqueuer.Enqueue(ctx, queue.Task{
				Kind:           domainEventsKind,
				Payload:        payload,
				IdempotencyKey: strconv.FormatInt(ev.ID, 10),
			})
			if err != nil {
				logger.Error().Err(err).Int64("event_id", ev.ID).Msg("enqueue outbox event")
				continue
			}
			if err := outbox.MarkDispatched(ctx, ev.ID); err != nil {
				logger.Error().Err(err).Int64("event_id", ev.ID).Msg("mark outbox event dispatched")
			}
		}
	}
}

// deliverEvent posts the event to the configured sink. Without a sink the
// event is logged and acknowledged; the outbox row remains the audit record.
func deliverEvent(ctx context.Context, sink *resilience.HTTPClient, sinkURL string, payload []byte, logger zerolog.Logger) error {
	var env dispatchEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.Error().Err(err).Msg("decode event payload")
		return nil
	}
	if sinkURL == "" {
		logger.Info().Str("topic", env.Topic).Str("aggregate_id", env.AggregateID).Msg("event dispatched")
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sinkURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := sink.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("event sink returned %s", resp.Status)
	}
	return nil
}

// runReconciliation hosts the asynq server that periodically completes stale
// pending ledger entries. Blocks until the context is cancelled.
func runReconciliation(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for asynq")
	}

	reconciler := &revenue.Reconciler{
		Ledger:     ledger.PG{Pool: pool},
		PendingAge: cfg.ReconcilePendingAge,
		Log:        logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(revenue.TaskReconcileLedger, reconciler.HandleReconcile)

	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1})
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start reconciliation server")
	}
	defer srv.Shutdown()

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	cronspec := fmt.Sprintf("@every %s", cfg.ReconcileInterval)
	if _, err := scheduler.Register(cronspec, revenue.NewReconcileTask()); err != nil {
		logger.Fatal().Err(err).Msg("register reconciliation schedule")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start reconciliation scheduler")
	}
	defer scheduler.Shutdown()

	<-ctx.Done()
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
