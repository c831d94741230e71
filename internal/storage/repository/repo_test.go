package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
)

// setupTestDB creates an in-memory database with the storage schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE cards (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			data TEXT NOT NULL,
			last_updated DATETIME NOT NULL
		);

		CREATE TABLE decks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL
		);

		CREATE TABLE deck_cards (
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			card_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 3),
			category TEXT NOT NULL,
			role TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (deck_id, card_id)
		);

		CREATE TABLE simulation_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			draw_count INTEGER NOT NULL,
			runs INTEGER NOT NULL,
			avg_starters REAL NOT NULL,
			avg_bricks REAL NOT NULL,
			avg_hand_traps REAL NOT NULL,
			avg_neutral REAL NOT NULL,
			created_at DATETIME NOT NULL
		);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestDeck(t *testing.T, repo DeckRepository, id, name string, modified time.Time) *models.Deck {
	t.Helper()
	d := &models.Deck{ID: id, Name: name, Source: "manual", CreatedAt: modified, ModifiedAt: modified}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func TestCardRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 89631139)
	require.NoError(t, err)
	assert.Nil(t, got, "missing card should return nil, nil")

	now := time.Now().UTC().Truncate(time.Second)
	card := &models.CachedCard{ID: 89631139, Name: "Blue-Eyes White Dragon", Data: `{"id":89631139}`, LastUpdated: now}
	require.NoError(t, repo.Upsert(ctx, card))

	card.Name = "Blue-Eyes White Dragon (updated)"
	card.LastUpdated = now.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, card))

	got, err = repo.GetByID(ctx, 89631139)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Blue-Eyes White Dragon (updated)", got.Name)
	assert.True(t, got.LastUpdated.Equal(now.Add(time.Hour)), "LastUpdated = %v", got.LastUpdated)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, 89631139))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCardRepository_SearchByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, name := range []string{"Dark Magician", "Dark Magician Girl", "Pot of Greed", "100% Dark"} {
		require.NoError(t, repo.Upsert(ctx, &models.CachedCard{ID: i + 1, Name: name, Data: "{}", LastUpdated: now}))
	}

	cards, err := repo.SearchByName(ctx, "magician", 10)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Dark Magician", cards[0].Name)
	assert.Equal(t, "Dark Magician Girl", cards[1].Name)

	cards, err = repo.SearchByName(ctx, "dark", 1)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	// Wildcards in the query are matched literally.
	cards, err = repo.SearchByName(ctx, "100%", 10)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "100% Dark", cards[0].Name)
}

func TestDeckRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createTestDeck(t, repo, "deck-1", "Snake-Eye", base)
	createTestDeck(t, repo, "deck-2", "Tenpai", base.Add(time.Hour))

	decks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "deck-2", decks[0].ID, "most recently modified first")

	d, err := repo.GetByID(ctx, "deck-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	d.Name = "Snake-Eye Fire King"
	d.ModifiedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.Update(ctx, d))

	d, err = repo.GetByID(ctx, "deck-1")
	require.NoError(t, err)
	assert.Equal(t, "Snake-Eye Fire King", d.Name)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeckRepository_Cards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	createTestDeck(t, repo, "deck-1", "Test", time.Now().UTC())

	require.NoError(t, repo.AddCard(ctx, &models.DeckCard{DeckID: "deck-1", CardID: 300, Position: 1, Quantity: 1, Category: "spell", Role: "brick", Data: "{}"}))
	require.NoError(t, repo.AddCard(ctx, &models.DeckCard{DeckID: "deck-1", CardID: 100, Position: 0, Quantity: 3, Category: "monster", Role: "starter", Data: "{}"}))

	cards, err := repo.GetCards(ctx, "deck-1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, 100, cards[0].CardID, "cards come back in position order")
	assert.Equal(t, 3, cards[0].Quantity)

	err = repo.AddCard(ctx, &models.DeckCard{DeckID: "deck-1", CardID: 200, Position: 2, Quantity: 4, Category: "trap", Role: "neutral", Data: "{}"})
	assert.Error(t, err, "quantity above 3 violates the schema")

	require.NoError(t, repo.ClearCards(ctx, "deck-1"))
	cards, err = repo.GetCards(ctx, "deck-1")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestDeckRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	decks := NewDeckRepository(db)
	runs := NewSimulationRepository(db)
	ctx := context.Background()

	createTestDeck(t, decks, "deck-1", "Test", time.Now().UTC())
	require.NoError(t, decks.AddCard(ctx, &models.DeckCard{DeckID: "deck-1", CardID: 1, Quantity: 1, Category: "monster", Role: "starter", Data: "{}"}))
	require.NoError(t, runs.Create(ctx, &models.SimulationRun{DeckID: "deck-1", DrawCount: 5, Runs: 100, CreatedAt: time.Now().UTC()}))

	require.NoError(t, decks.Delete(ctx, "deck-1"))

	cards, err := decks.GetCards(ctx, "deck-1")
	require.NoError(t, err)
	assert.Empty(t, cards)

	history, err := runs.ListByDeck(ctx, "deck-1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSimulationRepository(t *testing.T) {
	db := setupTestDB(t)
	decks := NewDeckRepository(db)
	repo := NewSimulationRepository(db)
	ctx := context.Background()

	createTestDeck(t, decks, "deck-1", "Test", time.Now().UTC())

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &models.SimulationRun{
			DeckID:      "deck-1",
			DrawCount:   5,
			Runs:        1000,
			AvgStarters: 1.5 + float64(i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, run))
		assert.NotZero(t, run.ID)
	}

	history, err := repo.ListByDeck(ctx, "deck-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.InDelta(t, 3.5, history[0].AvgStarters, 1e-9, "newest first")
	assert.InDelta(t, 2.5, history[1].AvgStarters, 1e-9)
}
