package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/chat"
	"github.com/Skufu/CareFusion/internal/config"
	"github.com/Skufu/CareFusion/internal/platform/db"
	"github.com/Skufu/CareFusion/internal/platform/gemini"
	"github.com/Skufu/CareFusion/internal/portal"
	"github.com/Skufu/CareFusion/internal/risk"
)

// app holds everything a command needs once configuration is resolved.
type app struct {
	cfg         *config.Config
	logger      zerolog.Logger
	pool        *pgxpool.Pool
	health      HealthChecker
	policy      risk.Policy
	assessments *assessment.Service
	portal      *portal.Service
	hub         *chat.Hub
	closers     []func()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// openGenerator returns nil when no API key is configured; assessment
// then reports a configuration error per request instead of failing
// startup.
func openGenerator(ctx context.Context, cfg *config.Config) (assessment.Generator, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, nil
	}
	g, err := gemini.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, gen assessment.Generator) (*app, error) {
	a := &app{cfg: cfg, logger: logger, hub: chat.NewHub(logger)}

	policy, err := risk.LoadPolicy(cfg.RiskPolicyFile)
	if err != nil {
		return nil, err
	}
	a.policy = policy

	if cfg.EnableDB {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.pool = pool
		a.health = pool
		a.closers = append(a.closers, pool.Close)
	}

	store, err := a.historyStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	client := assessment.NewClient(gen, assessment.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.AITimeout,
		Policy:  policy,
	}, logger)
	a.assessments = assessment.NewService(client, store, logger)

	if a.pool != nil {
		a.portal = portal.NewService(
			portal.NewProfileRepoPG(a.pool),
			portal.NewAppointmentRepoPG(a.pool),
			portal.NewMedicationRepoPG(a.pool),
			portal.NewBedRepoPG(a.pool),
		)
	} else {
		repos := portal.NewMemoryRepos()
		a.portal = portal.NewService(repos.Profiles(), repos.Appointments(), repos.Medications(), repos.Beds())
	}

	logger.Info().
		Str("history_backend", cfg.HistoryBackend).
		Bool("db", a.pool != nil).
		Bool("ai_configured", gen != nil).
		Msg("application initialised")
	return a, nil
}

func (a *app) historyStore() (assessment.Store, error) {
	switch a.cfg.HistoryBackend {
	case config.BackendPostgres:
		return assessment.NewStorePG(a.pool), nil
	case config.BackendSQLite:
		s, err := assessment.NewSQLiteStore(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite history: %w", err)
		}
		a.closers = append(a.closers, func() { s.Close() })
		return s, nil
	default:
		return assessment.NewMemoryStore(), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// bootstrap loads configuration and builds the app for a command.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	logger := newLogger(cfg)

	gen, err := openGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger, gen)
}
