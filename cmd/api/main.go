package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/virginus01/afobata-core/internal/app"
	"github.com/virginus01/afobata-core/internal/auth"
	"github.com/virginus01/afobata-core/internal/commission"
	"github.com/virginus01/afobata-core/internal/common"
	"github.com/virginus01/afobata-core/internal/config"
	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/db"
	"github.com/virginus01/afobata-core/internal/events"
	"github.com/virginus01/afobata-core/internal/health"
	"github.com/virginus01/afobata-core/internal/ledger"
	"github.com/virginus01/afobata-core/internal/lock"
	"github.com/virginus01/afobata-core/internal/obs"
	"github.com/virginus01/afobata-core/internal/pricing"
	"github.com/virginus01/afobata-core/internal/queue"
	"github.com/virginus01/afobata-core/internal/ratelimit"
	"github.com/virginus01/afobata-core/internal/repo"
	"github.com/virginus01/afobata-core/internal/resilience"
	"github.com/virginus01/afobata-core/internal/revenue"
	"github.com/virginus01/afobata-core/internal/security"
	"github.com/virginus01/afobata-core/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "afobata")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "afobata-core-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "afobata-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	validate := app.NewValidator()

	ratesSource := currency.CachedSource{
		R: redisClient,
		Next: currency.HTTPSource{
			URL:    cfg.RatesURL,
			APIKey: cfg.RatesAPIKey,
			Base:   cfg.BaseCurrency,
			Client: &resilience.HTTPClient{
				Client:      &http.Client{},
				Breaker:     resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).WithTarget("rates").WithLogger(logger),
				BaseBackoff: cfg.RetryBase,
				MaxAttempts: cfg.RetryMaxAttempts,
				Jitter:      cfg.RetryJitterPercent,
				Timeout:     cfg.OutboundTimeout,
			},
		},
		TTL:    cfg.RatesCacheTTL,
		Prefix: cfg.QueueRedisPrefix,
	}

	outbox := repo.OutboxRepo{Pool: pool}
	bus := &events.Bus{Store: outbox}

	authService, err := auth.NewService(auth.Config{Secret: cfg.JWTSecret})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authMiddleware := auth.Middleware{Service: authService}

	ratesHandler := &currency.Handler{Source: ratesSource, Base: cfg.BaseCurrency}
	pricingHandler := &pricing.Handler{
		Calc:     pricing.Calculator{LegacyQtyMultiply: cfg.LegacyQtyMultiply},
		Rates:    ratesSource,
		Validate: validate,
	}
	settleHandler := &commission.Handler{
		Svc: &commission.Service{
			Settlements: repo.SettlementRepo{Pool: pool},
			Brands:      repo.BrandRepo{Pool: pool},
			Rates:       ratesSource,
			Bus:         bus,
			Log:         logger,
		},
		Validate: validate,
	}
	withdrawHandler := &revenue.Handler{
		Svc: &revenue.Service{
			Brands:      repo.BrandRepo{Pool: pool},
			Users:       repo.UserRepo{Pool: pool},
			Wallets:     repo.WalletRepo{Pool: pool},
			Withdrawals: repo.WithdrawalRepo{Pool: pool},
			Ledger:      ledger.PG{Pool: pool},
			Rates:       ratesSource,
			Locker:      lock.Locker{R: redisClient, RetryBackoff: cfg.LockRetryBackoff},
			LockTTL:     cfg.LockTTL,
			Log:         logger,
		},
		Validate: validate,
	}

	queueAdmin := &queue.AdminHandler{
		Store: queue.NewStore(pool),
		Queue: queue.Enqueuer{
			R:           redisClient,
			Prefix:      cfg.QueueRedisPrefix,
			DedupTTL:    cfg.IdempotencyTTL,
			MaxAttempts: cfg.QueueMaxAttempts,
		},
		Logger: logger,
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	withdrawLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: cfg.QueueRedisPrefix + ":rl:"},
		Config: ratelimit.Config{
			Key: func(r *http.Request) string {
				brand, _ := tenant.From(r.Context())
				return tenant.PrefixKey(brand, "withdraw:"+common.ClientIP(r))
			},
			Window: cfg.WithdrawWindow,
			Max:    cfg.WithdrawMax,
		},
		OnError: func(err error) { logger.Error().Err(err).Msg("withdraw rate limit") },
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeadersEnable, EnableHSTS: true}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Brand-ID", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(tenant.NewResolver("", envOrDefault("ROOT_DOMAIN", ""), "").Middleware)
	if globalRate, err := limiter.NewRateFromFormatted(cfg.GlobalRateLimit); err == nil {
		if store, err := app.NewLimiterStore(redisClient); err == nil {
			r.Use(limiterstdlib.NewMiddleware(limiter.New(store, globalRate)).Handler)
		} else {
			logger.Error().Err(err).Msg("initialise limiter store")
		}
	}

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/v1", func(v chi.Router) {
		v.Get("/rates", ratesHandler.Rates)
		v.Post("/pricing/quote", pricingHandler.Quote)

		v.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)
			protected.With(idem.Middleware).Post("/settlements/split", settleHandler.Settle)
			protected.With(idem.Middleware, withdrawLimit.Middleware).Post("/revenue/withdraw", withdrawHandler.Withdraw)

			protected.Route("/admin/queue", func(admin chi.Router) {
				admin.Get("/dlq", queueAdmin.ListDLQ)
				admin.Post("/dlq/replay", queueAdmin.ReplayDLQ)
				admin.Get("/stats", queueAdmin.Stats)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-runCtx.Done():
		// Fail readiness first so load balancers drain before the listener
		// stops accepting.
		health.SetReady(false)
		time.Sleep(envDurationMillis("SHUTDOWN_DRAIN_MS", 0))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
		logger.Info().Msg("server stopped")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
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

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
