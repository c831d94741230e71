package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
)

// SimulationRepository records simulation summaries for saved decks.
type SimulationRepository interface {
	// Create inserts a run and sets its ID.
	Create(ctx context.Context, run *models.SimulationRun) error

	// ListByDeck returns a deck's runs, newest first, at most limit.
	ListByDeck(ctx context.Context, deckID string, limit int) ([]*models.SimulationRun, error)
}

type simulationRepository struct {
	db DBTX
}

// NewSimulationRepository creates a new simulation history repository.
func NewSimulationRepository(db DBTX) SimulationRepository {
	return &simulationRepository{db: db}
}

func (r *simulationRepository) Create(ctx context.Context, run *models.SimulationRun) error {
	query := `
		INSERT INTO simulation_runs (
			deck_id, draw_count, runs, avg_starters, avg_bricks,
			avg_hand_traps, avg_neutral, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		run.DeckID,
		run.DrawCount,
		run.Runs,
		run.AvgStarters,
		run.AvgBricks,
		run.AvgHandTraps,
		run.AvgNeutral,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record simulation run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get simulation run id: %w", err)
	}
	run.ID = int(id)

	return nil
}

func (r *simulationRepository) ListByDeck(ctx context.Context, deckID string, limit int) ([]*models.SimulationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, deck_id, draw_count, runs, avg_starters, avg_bricks,
		       avg_hand_traps, avg_neutral, created_at
		FROM simulation_runs
		WHERE deck_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, deckID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*models.SimulationRun
	for rows.Next() {
		run := &models.SimulationRun{}
		err := rows.Scan(
			&run.ID,
			&run.DeckID,
			&run.DrawCount,
			&run.Runs,
			&run.AvgStarters,
			&run.AvgBricks,
			&run.AvgHandTraps,
			&run.AvgNeutral,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulation runs: %w", err)
	}

	return runs, nil
}
