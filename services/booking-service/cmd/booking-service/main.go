package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	libconfig "github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/cache"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/config"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const grpcServiceName = "salonbook.booking"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := runtime.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("booking service failed", "err", err)
		os.Exit(1)
	}
}

// healthcheck probes the local gRPC health endpoint; used as the container health command.
func healthcheck() int {
	port := libconfig.String("GRPC_PORT", "9093")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := grpcx.CheckHealth(ctx, "127.0.0.1:"+port, grpcServiceName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdle,
	})
	if err != nil {
		return fmt.Errorf("db connection: %w", err)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		applied, err := storage.Migrate(ctx, pool)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "files", applied)
		}
	}

	loc, _ := cfg.Location()
	hours, _ := cfg.BusinessHours()
	taxonomy, err := catalog.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return fmt.Errorf("taxonomy: %w", err)
	}

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var (
		slotCache cache.SlotCache
		limiter   httpx.Limiter
	)
	window := time.Minute
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		slotCache = cache.NewRedisSlotCache(rdb, cfg.SlotCacheTTL)
		limiter = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMin, window, "salonbook:rl")
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name:     "redis",
			Check:    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			Optional: true,
		})
		logger.Info("redis enabled", "addr", addr)
	} else {
		slotCache = cache.NewMemorySlotCache(cfg.SlotCacheSize, cfg.SlotCacheTTL)
		limiter = httpx.NewMemoryRateLimiter(cfg.RateLimitPerMin, window)
		logger.Info("redis not configured; using in-process cache and rate limiter")
	}

	if strings.TrimSpace(cfg.KafkaBrokers) != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{
			Name:     "kafka",
			Check:    kafkax.ReadyCheck(cfg.KafkaBrokers),
			Optional: true,
		})
	}

	store := storage.NewStore(pool)
	engine := availability.NewEngine(store, hours, taxonomy,
		availability.WithLocation(loc),
		availability.WithLogger(logger),
	)
	slots := cache.NewCachedSlots(engine, slotCache, logger)
	bookings := booking.NewService(store, engine, logger,
		booking.WithCancelLeadTime(cfg.CancelLeadTime),
		booking.WithInvalidator(slots),
	)
	catalogManager := catalog.NewManager(store, taxonomy, slots, logger)

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	publisher := outbox.NewPublisher(pool, outbox.NewRepository(), logger, outbox.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		PollEvery: cfg.OutboxPollEvery,
		BatchSize: cfg.OutboxBatchSize,
		Retention: cfg.OutboxRetention,
	})
	go publisher.Run(ctx)

	grpcServer := grpcx.NewServer(logger)
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcServer.SetServing(true, grpcServiceName)
		go func() {
			if err := grpcServer.Run(ctx, lis, 5*time.Second); err != nil {
				logger.Error("grpc server error", "err", err)
			}
		}()
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handlers.Routes{
		Availability: handlers.NewAvailabilityHandler(slots, engine, logger),
		Bookings:     handlers.NewBookingHandler(bookings, logger),
		Catalog:      handlers.NewCatalogHandler(catalogManager, logger),
		Admin:        handlers.NewAdminHandler(bookings, catalogManager, logger),
		Verifier:     verifier,
		Logger:       logger,
	}.Register(mux)

	middlewares := []httpx.Middleware{
		httpx.WithCORS(httpx.BookingCORSPolicy(cfg.CORSOrigins)),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(cfg.RequestBodyLimit),
		httpx.WithTimeout(cfg.RequestTimeout()),
	}
	if cfg.RateLimitPerMin > 0 {
		middlewares = append(middlewares, httpx.WithRateLimit(limiter, logger, true))
	}
	handler := otelhttp.NewHandler(httpx.Chain(mux, middlewares...), "booking")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.RunHTTP(ctx, srv, logger, 10*time.Second)
	grpcServer.SetServing(false, grpcServiceName)
	return nil
}

func newVerifier(cfg config.Config) (*auth.TokenVerifier, error) {
	opts := auth.VerifierOptions{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   time.Duration(cfg.JWTLeewaySeconds) * time.Second,
	}
	if url := strings.TrimSpace(cfg.JWKSURL); url != "" {
		opts.JWKS = auth.NewJWKSClient(url, time.Duration(cfg.JWKSCacheSeconds)*time.Second)
	}
	v, err := auth.NewVerifier(opts)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return v, nil
}
