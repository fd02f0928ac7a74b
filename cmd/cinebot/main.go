package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/cine-bot/internal/config"
	"github.com/kitbuilder587/cine-bot/internal/metrics"
	"github.com/kitbuilder587/cine-bot/internal/repository"
	pgRepo "github.com/kitbuilder587/cine-bot/internal/repository/postgres"
	"github.com/kitbuilder587/cine-bot/internal/search/cineapi"
	"github.com/kitbuilder587/cine-bot/internal/service"
	"github.com/kitbuilder587/cine-bot/internal/telegram"
	"github.com/kitbuilder587/cine-bot/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cinebot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.Init(ctx, "cinebot", cfg.Tracing.OTLPEndpoint, logger)
	if err != nil {
		logger.Warn("otel init failed", zap.Error(err))
	}
	defer func() {
		if shutdownTracer != nil {
			shutdownTracer(context.Background())
		}
	}()

	m := metrics.New(nil)

	history, closeHistory, err := openHistory(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	searchClient := cineapi.New(cineapi.Config{
		BaseURL:    cfg.Search.BaseURL,
		PromptType: cfg.Search.PromptType,
		Timeout:    cfg.Search.Timeout,
	}, logger.Named("cineapi"), m)

	sessions := service.NewSessionService(service.SessionServiceDeps{
		Search:  searchClient,
		History: history,
		Logger:  logger.Named("session"),
		Metrics: m,
		Config:  service.SessionConfig{TTL: cfg.Session.TTL},
	})
	defer sessions.Close()

	bot, err := telegram.New(telegram.BotConfig{
		Token:             cfg.Telegram.Token,
		Debug:             cfg.Log.Level == "debug",
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}, sessions, logger.Named("telegram"), m)
	if err != nil {
		return err
	}

	logger.Info("configuration loaded",
		zap.String("search_url", cfg.Search.BaseURL),
		zap.String("prompt_type", cfg.Search.PromptType),
		zap.Duration("search_timeout", cfg.Search.Timeout),
		zap.Duration("session_ttl", cfg.Session.TTL),
		zap.Int("rate_limit", cfg.RateLimit.RequestsPerMinute),
		zap.Bool("postgres", cfg.Database.URL != ""),
		zap.String("metrics_addr", cfg.Metrics.Addr),
	)

	server := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metricsMux(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := bot.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		logger.Info("metrics server started", zap.String("addr", cfg.Metrics.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown error", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	logger.Info("cinebot stopped")
	return err
}

// openHistory выбирает хранилище истории: postgres, если задан DATABASE_URL.
func openHistory(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.HistoryRepository, func(), error) {
	if cfg.URL == "" {
		logger.Info("DATABASE_URL not set, keeping history in memory")
		return repository.NewMemoryHistoryRepository(100), func() {}, nil
	}

	db, err := pgRepo.New(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pgRepo.NewHistoryRepo(db), db.Close, nil
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}
