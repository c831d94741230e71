package enrich

import (
	"strings"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// RoleRule assigns Role to a card when every TextAll keyword appears in its
// rules text and, if TextAny or NameAny is set, at least one of those appears
// in the text or name respectively. Matching is case-insensitive.
type RoleRule struct {
	Role    deck.Role `toml:"role" json:"role"`
	TextAll []string  `toml:"text_all" json:"text_all,omitempty"`
	TextAny []string  `toml:"text_any" json:"text_any,omitempty"`
	NameAny []string  `toml:"name_any" json:"name_any,omitempty"`
}

// Matches reports whether the rule applies to a card.
func (r RoleRule) Matches(name, text string) bool {
	name = strings.ToLower(name)
	text = strings.ToLower(text)

	for _, kw := range r.TextAll {
		if !strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}
	if len(r.TextAny) == 0 && len(r.NameAny) == 0 {
		return len(r.TextAll) > 0
	}
	return containsAny(text, r.TextAny) || containsAny(name, r.NameAny)
}

// CategoryRule assigns Category when the card's type line contains Contains.
type CategoryRule struct {
	Contains string        `toml:"contains" json:"contains"`
	Category deck.Category `toml:"category" json:"category"`
}

// DefaultRoleRules returns the built-in role heuristics in priority order.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{Role: deck.RoleHandTrap, TextAll: []string{"hand"}, TextAny: []string{"negate", "discard"}},
		{Role: deck.RoleStarter, TextAny: []string{"search", "draw"}, NameAny: []string{"starter"}},
		{Role: deck.RoleBrick, TextAny: []string{"cannot be normal summoned", "cannot be special summoned"}},
	}
}

// DefaultCategoryRules returns the built-in category rules in priority order.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Contains: "spell", Category: deck.CategorySpell},
		{Contains: "trap", Category: deck.CategoryTrap},
	}
}

// InferRole returns the role of the first matching rule, or neutral.
func InferRole(rules []RoleRule, name, text string) deck.Role {
	for _, r := range rules {
		if r.Matches(name, text) {
			return r.Role
		}
	}
	return deck.RoleNeutral
}

// InferCategory returns the category of the first matching rule, or monster.
func InferCategory(rules []CategoryRule, cardType string) deck.Category {
	lower := strings.ToLower(cardType)
	for _, r := range rules {
		if strings.Contains(lower, strings.ToLower(r.Contains)) {
			return r.Category
		}
	}
	return deck.CategoryMonster
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
