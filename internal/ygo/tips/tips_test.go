package tips

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

func ruleNames(e *Engine, avg map[deck.Role]float64) []string {
	var names []string
	for _, r := range e.rules {
		if r.Applies(avg) {
			names = append(names, r.Name)
		}
	}
	return names
}

func TestEvaluate_WeakDeck(t *testing.T) {
	e := NewEngine(DefaultThresholds())
	avg := map[deck.Role]float64{
		deck.RoleStarter:  1.0,
		deck.RoleBrick:    1.2,
		deck.RoleHandTrap: 0.5,
		deck.RoleNeutral:  2.3,
	}

	tips := e.Evaluate(avg)

	require.Len(t, tips, 4)
	assert.True(t, strings.Contains(tips[0], "lacks combo initiators"))
	assert.True(t, strings.Contains(tips[1], "High number of Bricks"))
	assert.True(t, strings.Contains(tips[2], "Low Handtrap count"))
	assert.True(t, strings.Contains(tips[3], "ratio between Starters and Bricks"))
}

func TestEvaluate_Table(t *testing.T) {
	e := NewEngine(DefaultThresholds())

	tests := []struct {
		name string
		avg  map[deck.Role]float64
		want []string
	}{
		{
			name: "strong deck",
			avg:  map[deck.Role]float64{deck.RoleStarter: 2.8, deck.RoleBrick: 0.2, deck.RoleHandTrap: 1.6},
			want: []string{"many-starters", "few-bricks", "many-hand-traps"},
		},
		{
			name: "balanced deck fires nothing",
			avg:  map[deck.Role]float64{deck.RoleStarter: 2.0, deck.RoleBrick: 0.6, deck.RoleHandTrap: 1.0},
			want: nil,
		},
		{
			name: "zero bricks divides by one",
			avg:  map[deck.Role]float64{deck.RoleStarter: 2.0, deck.RoleBrick: 0, deck.RoleHandTrap: 1.0},
			want: []string{"few-bricks", "starter-brick-balance"},
		},
		{
			name: "thresholds are strict",
			avg:  map[deck.Role]float64{deck.RoleStarter: 1.8, deck.RoleBrick: 0.5, deck.RoleHandTrap: 0.8},
			want: nil,
		},
		{
			name: "missing roles read as zero",
			avg:  map[deck.Role]float64{},
			want: []string{"few-starters", "few-bricks", "few-hand-traps", "starter-brick-balance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ruleNames(e, tt.avg))
			assert.Len(t, e.Evaluate(tt.avg), len(tt.want))
		})
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.MinStarters = 0.5
	e := NewEngine(th)

	names := ruleNames(e, map[deck.Role]float64{deck.RoleStarter: 1.0, deck.RoleBrick: 0.1, deck.RoleHandTrap: 1.0})

	assert.NotContains(t, names, "few-starters")
}

func TestNewEngineWithRules(t *testing.T) {
	e := NewEngineWithRules([]Rule{{
		Name:    "always",
		Applies: func(map[deck.Role]float64) bool { return true },
		Message: "hello",
	}})

	assert.Equal(t, []string{"hello"}, e.Evaluate(nil))
}
