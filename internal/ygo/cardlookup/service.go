// Package cardlookup resolves card ids through the local cache and the YGOPRODeck catalog.
package cardlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/DeckOps/internal/metrics"
	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
)

// Cache stores catalog documents locally.
type Cache interface {
	GetCachedCard(ctx context.Context, id int) (*models.CachedCard, error)
	CacheCard(ctx context.Context, id int, name string, data any) error
}

// Catalog is the remote card database.
type Catalog interface {
	GetCardByID(ctx context.Context, id int) (*ygoprodeck.Card, error)
	SearchByName(ctx context.Context, name string, limit int) ([]ygoprodeck.Card, error)
	GetBanList(ctx context.Context, format string) ([]ygoprodeck.BanListCard, error)
}

// Service provides card lookup with caching.
type Service struct {
	cache          Cache
	catalog        Catalog
	metrics        *metrics.ServiceMetrics
	logger         *slog.Logger
	staleThreshold time.Duration
}

// ServiceOptions configures the card lookup service.
type ServiceOptions struct {
	// StaleThreshold is how old cached data can be before the catalog is asked again.
	// Default: 7 days
	StaleThreshold time.Duration

	// Metrics receives lookup and cache counters. Optional.
	Metrics *metrics.ServiceMetrics

	Logger *slog.Logger
}

// DefaultServiceOptions returns sensible defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		StaleThreshold: 7 * 24 * time.Hour,
	}
}

// NewService creates a new card lookup service. A nil cache disables caching.
func NewService(cache Cache, catalog Catalog, options ServiceOptions) *Service {
	if options.StaleThreshold == 0 {
		options.StaleThreshold = DefaultServiceOptions().StaleThreshold
	}
	if options.Metrics == nil {
		options.Metrics = metrics.NewServiceMetrics()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Service{
		cache:          cache,
		catalog:        catalog,
		metrics:        options.Metrics,
		logger:         options.Logger,
		staleThreshold: options.StaleThreshold,
	}
}

// GetCard retrieves a card by passcode.
// The cache is consulted first; a stale entry is served only when the catalog fails.
func (s *Service) GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error) {
	cached := s.fromCache(ctx, id)
	if cached != nil && !cached.stale {
		s.metrics.RecordCacheHit()
		return cached.card, nil
	}
	s.metrics.RecordCacheMiss()

	start := time.Now()
	card, err := s.catalog.GetCardByID(ctx, id)
	s.metrics.RecordLookup(time.Since(start), err)
	if err != nil {
		if cached != nil {
			s.logger.Debug("Serving stale cached card", "id", id, "error", err)
			return cached.card, nil
		}
		return nil, fmt.Errorf("failed to fetch card %d: %w", id, err)
	}

	// Alternate artwork ids resolve to the base card; cache under both.
	s.store(ctx, id, card)
	if card.ID != id {
		s.store(ctx, card.ID, card)
	}
	return card, nil
}

// Search returns up to limit catalog cards matching name. Results are cached.
func (s *Service) Search(ctx context.Context, name string, limit int) ([]ygoprodeck.Card, error) {
	start := time.Now()
	cards, err := s.catalog.SearchByName(ctx, name, limit)
	if len(name) >= ygoprodeck.MinSearchLength {
		s.metrics.RecordLookup(time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	for i := range cards {
		s.store(ctx, cards[i].ID, &cards[i])
	}
	return cards, nil
}

// BanList returns the ban list for a format.
func (s *Service) BanList(ctx context.Context, format string) ([]ygoprodeck.BanListCard, error) {
	start := time.Now()
	cards, err := s.catalog.GetBanList(ctx, format)
	s.metrics.RecordLookup(time.Since(start), err)
	return cards, err
}

type cachedCard struct {
	card  *ygoprodeck.Card
	stale bool
}

func (s *Service) fromCache(ctx context.Context, id int) *cachedCard {
	if s.cache == nil {
		return nil
	}

	row, err := s.cache.GetCachedCard(ctx, id)
	if err != nil {
		s.logger.Warn("Card cache read failed", "id", id, "error", err)
		return nil
	}
	if row == nil {
		return nil
	}

	var card ygoprodeck.Card
	if err := json.Unmarshal([]byte(row.Data), &card); err != nil {
		s.logger.Warn("Discarding unreadable cached card", "id", id, "error", err)
		return nil
	}

	return &cachedCard{card: &card, stale: row.IsStale(s.staleThreshold, time.Now())}
}

func (s *Service) store(ctx context.Context, id int, card *ygoprodeck.Card) {
	if s.cache == nil {
		return
	}
	// Cache write failures are not fatal.
	if err := s.cache.CacheCard(ctx, id, card.Name, card); err != nil {
		s.logger.Warn("Card cache write failed", "id", id, "error", err)
	}
}
