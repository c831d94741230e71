// Package tips turns simulated per-hand role averages into deck-building advice.
package tips

import "github.com/ramonehamilton/DeckOps/internal/ygo/deck"

// Thresholds are the cut-offs the default rules compare role averages against.
type Thresholds struct {
	MinStarters        float64 `toml:"min_starters" json:"min_starters"`
	MaxStarters        float64 `toml:"max_starters" json:"max_starters"`
	MaxBricks          float64 `toml:"max_bricks" json:"max_bricks"`
	LowBricks          float64 `toml:"low_bricks" json:"low_bricks"`
	MinHandTraps       float64 `toml:"min_hand_traps" json:"min_hand_traps"`
	MaxHandTraps       float64 `toml:"max_hand_traps" json:"max_hand_traps"`
	StarterToBrickRate float64 `toml:"starter_to_brick_ratio" json:"starter_to_brick_ratio"`
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinStarters:        1.8,
		MaxStarters:        2.5,
		MaxBricks:          1.0,
		LowBricks:          0.5,
		MinHandTraps:       0.8,
		MaxHandTraps:       1.5,
		StarterToBrickRate: 3,
	}
}

// Rule is one entry of the advice table.
type Rule struct {
	Name    string
	Applies func(avg map[deck.Role]float64) bool
	Message string
}

// Engine evaluates rules in order. It holds no state between calls.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the default rule table over the given thresholds.
func NewEngine(t Thresholds) *Engine {
	return &Engine{rules: DefaultRules(t)}
}

// NewEngineWithRules creates an engine over a custom rule table.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate returns the message of every rule that applies, in table order.
func (e *Engine) Evaluate(avg map[deck.Role]float64) []string {
	tips := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		if rule.Applies(avg) {
			tips = append(tips, rule.Message)
		}
	}
	return tips
}

// DefaultRules builds the stock advice table.
func DefaultRules(t Thresholds) []Rule {
	return []Rule{
		{
			Name:    "few-starters",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleStarter] < t.MinStarters },
			Message: "Your deck lacks combo initiators. Consider adding more Starter cards to improve consistency and combo potential.",
		},
		{
			Name:    "many-starters",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleStarter] > t.MaxStarters },
			Message: "Strong combo potential with many Starters! Ensure you maintain enough defensive options with Handtraps.",
		},
		{
			Name:    "many-bricks",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleBrick] > t.MaxBricks },
			Message: "High number of Bricks detected. Consider reducing situational cards to improve opening hand consistency.",
		},
		{
			Name:    "few-bricks",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleBrick] < t.LowBricks },
			Message: "Excellent brick ratio! Your deck should consistently produce playable hands.",
		},
		{
			Name:    "few-hand-traps",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleHandTrap] < t.MinHandTraps },
			Message: "Low Handtrap count may leave you vulnerable. Consider adding more defensive options.",
		},
		{
			Name:    "many-hand-traps",
			Applies: func(a map[deck.Role]float64) bool { return a[deck.RoleHandTrap] > t.MaxHandTraps },
			Message: "Strong defensive capabilities with high Handtrap count. Ensure this doesn't compromise your combo potential.",
		},
		{
			Name: "starter-brick-balance",
			Applies: func(a map[deck.Role]float64) bool {
				bricks := a[deck.RoleBrick]
				if bricks == 0 {
					bricks = 1
				}
				return a[deck.RoleStarter]/bricks < t.StarterToBrickRate
			},
			Message: "The ratio between Starters and Bricks could be improved. Aim for at least 3 Starters for every Brick.",
		},
	}
}
