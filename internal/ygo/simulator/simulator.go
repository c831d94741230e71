package simulator

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// Options are the per-call simulation parameters.
type Options struct {
	DrawCount int `json:"draw_count"`
	Runs      int `json:"runs"`
}

// Draw is one simulated hand.
type Draw struct {
	Cards   []Instance `json:"cards"`
	Summary Summary    `json:"summary"`
}

// Averages are per-hand averages across all runs.
type Averages struct {
	ByRole     map[deck.Role]float64     `json:"by_role"`
	ByCategory map[deck.Category]float64 `json:"by_category"`
}

// CardAppearance is how often a card showed up in at least one copy.
type CardAppearance struct {
	Card        deck.Card `json:"card"`
	Appearances int       `json:"appearances"`
	Percentage  float64   `json:"percentage"`
}

// Result is the outcome of a simulation.
type Result struct {
	DrawCount   int              `json:"draw_count"`
	Runs        int              `json:"runs"`
	Draws       []Draw           `json:"draws"`
	Averages    Averages         `json:"averages"`
	Appearances []CardAppearance `json:"appearances"`
}

// Config configures a Simulator.
type Config struct {
	// Source overrides the entropy source. Nil uses a crypto-seeded PCG.
	Source Source

	// MaxRuns caps the run count of a single simulation. Zero means no cap.
	MaxRuns int

	Logger *slog.Logger
}

// Simulator runs repeated draw simulations over a deck.
// It is safe for concurrent use.
type Simulator struct {
	mu      sync.Mutex
	sampler *Sampler
	maxRuns int
	logger  *slog.Logger
}

// New creates a simulator.
func New(cfg Config) *Simulator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Simulator{
		sampler: NewSampler(cfg.Source),
		maxRuns: cfg.MaxRuns,
		logger:  cfg.Logger,
	}
}

// Validate checks simulation parameters against a deck without running anything.
func (s *Simulator) Validate(d *deck.Deck, opts Options) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if opts.Runs < 1 || (s.maxRuns > 0 && opts.Runs > s.maxRuns) {
		return &InvalidRunCountError{Runs: opts.Runs, MaxRuns: s.maxRuns}
	}
	if opts.DrawCount < 1 {
		return &InvalidDrawCountError{DrawCount: opts.DrawCount}
	}
	if total := d.TotalCards(); opts.DrawCount > total {
		return &InsufficientCardsError{Requested: opts.DrawCount, Available: total}
	}
	return nil
}

// Run draws opts.DrawCount cards opts.Runs times and summarizes the hands.
// All parameter errors are reported before the first draw; the draw count is never clamped.
func (s *Simulator) Run(d *deck.Deck, opts Options) (*Result, error) {
	if err := s.Validate(d, opts); err != nil {
		return nil, err
	}

	// Composition is constant across runs, so expand once.
	instances, err := Expand(d)
	if err != nil {
		return nil, err
	}

	roleTotals := make(map[deck.Role]int, len(deck.Roles))
	categoryTotals := make(map[deck.Category]int, len(deck.Categories))
	draws := make([]Draw, 0, opts.Runs)

	s.mu.Lock()
	defer s.mu.Unlock()

	for run := 0; run < opts.Runs; run++ {
		hand, err := s.sampler.Draw(instances, opts.DrawCount)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", run, err)
		}

		summary := Tally(hand)
		for role, n := range summary.ByRole {
			roleTotals[role] += n
		}
		for category, n := range summary.ByCategory {
			categoryTotals[category] += n
		}

		draws = append(draws, Draw{Cards: hand, Summary: summary})
	}

	result := &Result{
		DrawCount:   opts.DrawCount,
		Runs:        opts.Runs,
		Draws:       draws,
		Averages:    averages(roleTotals, categoryTotals, opts.Runs),
		Appearances: AppearanceRates(d, draws),
	}

	s.logger.Debug("simulation complete",
		"deck", d.Name,
		"cards", len(instances),
		"draw_count", opts.DrawCount,
		"runs", opts.Runs)

	return result, nil
}

func averages(roleTotals map[deck.Role]int, categoryTotals map[deck.Category]int, runs int) Averages {
	avg := Averages{
		ByRole:     make(map[deck.Role]float64, len(deck.Roles)),
		ByCategory: make(map[deck.Category]float64, len(deck.Categories)),
	}
	for _, r := range deck.Roles {
		avg.ByRole[r] = float64(roleTotals[r]) / float64(runs)
	}
	for _, c := range deck.Categories {
		avg.ByCategory[c] = float64(categoryTotals[c]) / float64(runs)
	}
	return avg
}

// AppearanceRates computes, for every card in d, the percentage of draws that
// contain at least one copy of it. Results are ordered by percentage descending,
// with ties kept in deck order.
func AppearanceRates(d *deck.Deck, draws []Draw) []CardAppearance {
	counts := make(map[int]int, len(d.Cards))
	for _, draw := range draws {
		seen := make(map[int]bool, len(draw.Cards))
		for _, inst := range draw.Cards {
			if !seen[inst.YugiohID] {
				seen[inst.YugiohID] = true
				counts[inst.YugiohID]++
			}
		}
	}

	runs := len(draws)
	stats := make([]CardAppearance, 0, len(d.Cards))
	for _, card := range d.Cards {
		pct := 0.0
		if runs > 0 {
			pct = float64(counts[card.YugiohID]) / float64(runs) * 100
		}
		stats = append(stats, CardAppearance{
			Card:        card,
			Appearances: counts[card.YugiohID],
			Percentage:  pct,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Percentage > stats[j].Percentage
	})

	return stats
}
