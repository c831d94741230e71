// Package app wires the deck, simulation and card services shared by the CLI and the REST API.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ramonehamilton/DeckOps/internal/config"
	"github.com/ramonehamilton/DeckOps/internal/metrics"
	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cardlookup"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/enrich"
	"github.com/ramonehamilton/DeckOps/internal/ygo/simulator"
	"github.com/ramonehamilton/DeckOps/internal/ygo/tips"
)

// CardService resolves catalog cards. Implemented by cardlookup.Service.
type CardService interface {
	GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error)
	Search(ctx context.Context, name string, limit int) ([]ygoprodeck.Card, error)
	BanList(ctx context.Context, format string) ([]ygoprodeck.BanListCard, error)
}

// Services contains all shared services needed by facades.
type Services struct {
	// Storage holds saved decks, simulation history and the card cache.
	Storage *storage.Service

	Cards     CardService
	Enricher  *enrich.Enricher
	Simulator *simulator.Simulator
	Tips      *tips.Engine
	Metrics   *metrics.ServiceMetrics

	// Defaults fill in zero draw counts and run counts.
	Defaults simulator.Options

	Logger *slog.Logger
}

// NewServices builds the service graph from configuration and opens the database.
// Callers must Close the returned services.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	dbConfig := storage.DefaultConfig(dbPath)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate

	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)

	m := metrics.NewServiceMetrics()

	client := ygoprodeck.NewClient(ygoprodeck.ClientOptions{
		BaseURL:    cfg.Lookup.BaseURL,
		Timeout:    cfg.LookupTimeout(),
		RateLimit:  cfg.LookupRateLimit(),
		MaxRetries: cfg.Lookup.MaxRetries,
	})
	lookup := cardlookup.NewService(store, client, cardlookup.ServiceOptions{
		StaleThreshold: cfg.StaleThreshold(),
		Metrics:        m,
		Logger:         logger,
	})

	var source simulator.Source
	if cfg.Simulation.Seed != 0 {
		source = simulator.NewSeededSource(cfg.Simulation.Seed)
	}

	logger.DebugContext(ctx, "Services initialized", "database", dbPath)

	return &Services{
		Storage: store,
		Cards:   lookup,
		Enricher: enrich.New(lookup, enrich.Options{
			RoleRules:     cfg.Roles.Rules,
			CategoryRules: cfg.Roles.Categories,
			Logger:        logger,
		}),
		Simulator: simulator.New(simulator.Config{
			Source:  source,
			MaxRuns: cfg.Simulation.MaxRuns,
			Logger:  logger,
		}),
		Tips:    tips.NewEngine(cfg.Tips),
		Metrics: m,
		Defaults: simulator.Options{
			DrawCount: cfg.Simulation.DrawCount,
			Runs:      cfg.Simulation.Runs,
		},
		Logger: logger,
	}, nil
}

// Close releases the database.
func (s *Services) Close() error {
	if s.Storage == nil {
		return nil
	}
	return s.Storage.Close()
}

func (s *Services) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// options fills zero fields from the configured defaults.
func (s *Services) options(drawCount, runs int) simulator.Options {
	opts := simulator.Options{DrawCount: drawCount, Runs: runs}
	if opts.DrawCount == 0 {
		opts.DrawCount = s.Defaults.DrawCount
	}
	if opts.Runs == 0 {
		opts.Runs = s.Defaults.Runs
	}
	return opts
}
