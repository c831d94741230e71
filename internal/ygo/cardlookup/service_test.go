package cardlookup

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/DeckOps/internal/metrics"
	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
)

type fakeCache struct {
	mu    sync.Mutex
	cards map[int]*models.CachedCard
}

func newFakeCache() *fakeCache {
	return &fakeCache{cards: make(map[int]*models.CachedCard)}
}

func (c *fakeCache) GetCachedCard(_ context.Context, id int) (*models.CachedCard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cards[id], nil
}

func (c *fakeCache) CacheCard(_ context.Context, id int, name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[id] = &models.CachedCard{ID: id, Name: name, Data: string(raw), LastUpdated: time.Now()}
	return nil
}

func (c *fakeCache) put(card ygoprodeck.Card, age time.Duration) {
	raw, _ := json.Marshal(card)
	c.cards[card.ID] = &models.CachedCard{ID: card.ID, Name: card.Name, Data: string(raw), LastUpdated: time.Now().Add(-age)}
}

type fakeCatalog struct {
	mu      sync.Mutex
	cards   map[int]ygoprodeck.Card
	calls   int
	failAll bool
}

func (f *fakeCatalog) GetCardByID(_ context.Context, id int) (*ygoprodeck.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll {
		return nil, errors.New("catalog unavailable")
	}
	card, ok := f.cards[id]
	if !ok {
		return nil, &ygoprodeck.NotFoundError{URL: "test"}
	}
	return &card, nil
}

func (f *fakeCatalog) SearchByName(_ context.Context, name string, limit int) ([]ygoprodeck.Card, error) {
	var out []ygoprodeck.Card
	for _, c := range f.cards {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCatalog) GetBanList(_ context.Context, format string) ([]ygoprodeck.BanListCard, error) {
	return []ygoprodeck.BanListCard{{ID: 1, Name: "Pot of Greed"}}, nil
}

func TestService_GetCard_CachesCatalogResult(t *testing.T) {
	cache := newFakeCache()
	catalog := &fakeCatalog{cards: map[int]ygoprodeck.Card{55144522: {ID: 55144522, Name: "Pot of Greed"}}}
	m := metrics.NewServiceMetrics()
	svc := NewService(cache, catalog, ServiceOptions{Metrics: m})
	ctx := context.Background()

	card, err := svc.GetCard(ctx, 55144522)
	require.NoError(t, err)
	assert.Equal(t, "Pot of Greed", card.Name)

	card, err = svc.GetCard(ctx, 55144522)
	require.NoError(t, err)
	assert.Equal(t, "Pot of Greed", card.Name)

	assert.Equal(t, 1, catalog.calls, "second lookup should be served from cache")
	stats := m.GetStats()
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
	assert.Equal(t, uint64(1), stats.LookupRequests)
}

func TestService_GetCard_RefreshesStaleEntry(t *testing.T) {
	cache := newFakeCache()
	cache.put(ygoprodeck.Card{ID: 1, Name: "Old Name"}, 48*time.Hour)
	catalog := &fakeCatalog{cards: map[int]ygoprodeck.Card{1: {ID: 1, Name: "New Name"}}}
	svc := NewService(cache, catalog, ServiceOptions{StaleThreshold: 24 * time.Hour})

	card, err := svc.GetCard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "New Name", card.Name)
	assert.Equal(t, 1, catalog.calls)
}

func TestService_GetCard_FallsBackToStaleEntry(t *testing.T) {
	cache := newFakeCache()
	cache.put(ygoprodeck.Card{ID: 1, Name: "Old Name"}, 48*time.Hour)
	catalog := &fakeCatalog{failAll: true}
	m := metrics.NewServiceMetrics()
	svc := NewService(cache, catalog, ServiceOptions{StaleThreshold: 24 * time.Hour, Metrics: m})

	card, err := svc.GetCard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Old Name", card.Name)
	assert.Equal(t, uint64(1), m.GetStats().LookupErrors)
}

func TestService_GetCard_NotFound(t *testing.T) {
	svc := NewService(nil, &fakeCatalog{cards: map[int]ygoprodeck.Card{}}, ServiceOptions{})

	_, err := svc.GetCard(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, ygoprodeck.IsNotFound(err))
}

func TestService_GetCard_CachesAlternateArtworkID(t *testing.T) {
	cache := newFakeCache()
	// The catalog answers an alternate artwork id with the base card.
	catalog := &fakeCatalog{cards: map[int]ygoprodeck.Card{89631140: {ID: 89631139, Name: "Blue-Eyes White Dragon"}}}
	svc := NewService(cache, catalog, ServiceOptions{StaleThreshold: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		card, err := svc.GetCard(ctx, 89631140)
		require.NoError(t, err)
		assert.Equal(t, "Blue-Eyes White Dragon", card.Name)
	}
	assert.Equal(t, 1, catalog.calls, "the requested id should be served from cache")

	base, err := cache.GetCachedCard(ctx, 89631139)
	require.NoError(t, err)
	assert.NotNil(t, base, "the base id is cached too")

	// The stale fallback also covers the requested id.
	cache.mu.Lock()
	cache.cards[89631140].LastUpdated = time.Now().Add(-2 * time.Hour)
	cache.mu.Unlock()
	catalog.failAll = true

	card, err := svc.GetCard(ctx, 89631140)
	require.NoError(t, err)
	assert.Equal(t, "Blue-Eyes White Dragon", card.Name)
}

func TestService_SearchCachesResults(t *testing.T) {
	cache := newFakeCache()
	catalog := &fakeCatalog{cards: map[int]ygoprodeck.Card{7: {ID: 7, Name: "Dark Magician"}}}
	svc := NewService(cache, catalog, ServiceOptions{})

	cards, err := svc.Search(context.Background(), "magician", 10)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	cached, err := cache.GetCachedCard(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Dark Magician", cached.Name)
}

func TestService_BanList(t *testing.T) {
	svc := NewService(nil, &fakeCatalog{}, ServiceOptions{})

	cards, err := svc.BanList(context.Background(), "tcg")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
