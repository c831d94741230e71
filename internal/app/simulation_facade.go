package app

import (
	"context"
	"io"
	"time"

	"github.com/ramonehamilton/DeckOps/internal/charts"
	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/simulator"
)

// SimulationFacade runs draw simulations and keeps their history.
type SimulationFacade struct {
	services *Services
}

// NewSimulationFacade creates a new SimulationFacade with the given services.
func NewSimulationFacade(services *Services) *SimulationFacade {
	return &SimulationFacade{services: services}
}

// SimulateRequest selects a saved deck or carries the cards inline.
// Zero draw and run counts use the configured defaults.
type SimulateRequest struct {
	DeckID       string      `json:"deck_id,omitempty"`
	Name         string      `json:"name,omitempty"`
	Cards        []deck.Card `json:"cards,omitempty"`
	DrawCount    int         `json:"draw_count"`
	Runs         int         `json:"runs"`
	IncludeDraws bool        `json:"include_draws"`
}

// SimulationReport is a simulation result with advisory tips.
type SimulationReport struct {
	DeckID   string            `json:"deck_id,omitempty"`
	DeckName string            `json:"deck_name"`
	Result   *simulator.Result `json:"result"`
	Tips     []string          `json:"tips"`
}

// Simulate runs a simulation for a request. Runs against a saved deck are
// recorded in its history.
func (f *SimulationFacade) Simulate(ctx context.Context, req *SimulateRequest) (*SimulationReport, error) {
	var (
		d      *deck.Deck
		deckID string
	)

	switch {
	case req.DeckID != "":
		if f.services.Storage == nil {
			return nil, &AppError{Message: "Database not initialized"}
		}
		saved, err := f.services.Storage.GetDeck(ctx, req.DeckID)
		if err != nil {
			return nil, err
		}
		d, deckID = saved.Deck, saved.ID
	case len(req.Cards) > 0:
		d = deck.New(req.Name, req.Cards)
	default:
		return nil, invalidRequest("deck_id or cards is required")
	}

	report, err := f.SimulateDeck(ctx, d, f.services.options(req.DrawCount, req.Runs))
	if err != nil {
		return nil, err
	}
	report.DeckID = deckID

	if deckID != "" {
		f.record(ctx, deckID, report.Result)
	}
	if !req.IncludeDraws {
		report.Result.Draws = nil
	}

	return report, nil
}

// SimulateDeck runs a simulation over d and evaluates tips on the averages.
func (f *SimulationFacade) SimulateDeck(ctx context.Context, d *deck.Deck, opts simulator.Options) (*SimulationReport, error) {
	start := time.Now()

	res, err := f.services.Simulator.Run(d, opts)
	if err != nil {
		return nil, err
	}

	if f.services.Metrics != nil {
		f.services.Metrics.RecordSimulation(time.Since(start))
	}

	f.services.logger().InfoContext(ctx, "Simulation complete",
		"deck", d.Name, "draw_count", opts.DrawCount, "runs", opts.Runs,
		"avg_starters", res.Averages.ByRole[deck.RoleStarter],
		"duration", time.Since(start))

	return &SimulationReport{
		DeckName: d.Name,
		Result:   res,
		Tips:     f.services.Tips.Evaluate(res.Averages.ByRole),
	}, nil
}

// History returns a saved deck's most recent simulation summaries, newest first.
func (f *SimulationFacade) History(ctx context.Context, deckID string, limit int) ([]*models.SimulationRun, error) {
	if f.services.Storage == nil {
		return nil, &AppError{Message: "Database not initialized"}
	}
	if _, err := f.services.Storage.GetDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return f.services.Storage.ListSimulations(ctx, deckID, limit)
}

// RenderHistory writes an HTML chart of a saved deck's simulation history.
func (f *SimulationFacade) RenderHistory(ctx context.Context, deckID string, w io.Writer) error {
	runs, err := f.History(ctx, deckID, 0)
	if err != nil {
		return err
	}
	saved, err := f.services.Storage.GetDeck(ctx, deckID)
	if err != nil {
		return err
	}
	return charts.RenderHistory(w, saved.Name, runs, charts.DefaultChartConfig())
}

// RenderReport writes an HTML chart of a simulation report.
func RenderReport(w io.Writer, report *SimulationReport) error {
	return charts.RenderSimulation(w, report.DeckName, report.Result, charts.DefaultChartConfig())
}

// record stores a summary of res. Failures are logged, not returned.
func (f *SimulationFacade) record(ctx context.Context, deckID string, res *simulator.Result) {
	run := &models.SimulationRun{
		DeckID:       deckID,
		DrawCount:    res.DrawCount,
		Runs:         res.Runs,
		AvgStarters:  res.Averages.ByRole[deck.RoleStarter],
		AvgBricks:    res.Averages.ByRole[deck.RoleBrick],
		AvgHandTraps: res.Averages.ByRole[deck.RoleHandTrap],
		AvgNeutral:   res.Averages.ByRole[deck.RoleNeutral],
	}
	if err := f.services.Storage.RecordSimulation(ctx, run); err != nil {
		f.services.logger().WarnContext(ctx, "Failed to record simulation", "deck_id", deckID, "error", err)
	}
}
