package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// fakeLookup resolves ids from a map, failing for anything in fail.
type fakeLookup struct {
	cards map[int]ygoprodeck.Card
	fail  map[int]bool
	calls atomic.Int32
	delay func(id int) time.Duration
}

func (f *fakeLookup) GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error) {
	f.calls.Add(1)
	if f.delay != nil {
		time.Sleep(f.delay(id))
	}
	if f.fail[id] {
		return nil, fmt.Errorf("lookup %d: %w", id, errors.New("HTTP 500"))
	}
	c, ok := f.cards[id]
	if !ok {
		return nil, &ygoprodeck.NotFoundError{URL: "test"}
	}
	return &c, nil
}

func catalogCard(id int, name, cardType, desc string) ygoprodeck.Card {
	return ygoprodeck.Card{
		ID:   id,
		Name: name,
		Type: cardType,
		Desc: desc,
		CardImages: []ygoprodeck.CardImage{
			{ID: id, ImageURL: fmt.Sprintf("https://images.example/%d.jpg", id)},
		},
		CardPrices: []ygoprodeck.CardPrice{{CardmarketPrice: "1.00"}},
	}
}

func TestEnrich_PartialFailureKeepsOrder(t *testing.T) {
	lookup := &fakeLookup{
		cards: map[int]ygoprodeck.Card{
			1: catalogCard(1, "One", "Effect Monster", ""),
			3: catalogCard(3, "Three", "Spell Card", ""),
			5: catalogCard(5, "Five", "Trap Card", ""),
		},
		fail: map[int]bool{2: true, 4: true},
		// Later ids finish first so completion order differs from input order.
		delay: func(id int) time.Duration { return time.Duration(6-id) * 5 * time.Millisecond },
	}
	e := New(lookup, Options{})

	entries := []ydk.Entry{{ID: 1, Count: 3}, {ID: 2, Count: 1}, {ID: 3, Count: 2}, {ID: 4, Count: 1}, {ID: 5, Count: 1}}
	res, err := e.Resolve(context.Background(), entries)
	require.NoError(t, err)

	require.Len(t, res.Cards, 3)
	assert.Equal(t, 1, res.Cards[0].YugiohID)
	assert.Equal(t, 3, res.Cards[1].YugiohID)
	assert.Equal(t, 5, res.Cards[2].YugiohID)
	assert.Equal(t, 3, res.Cards[0].Quantity)
	assert.Equal(t, 2, res.Cards[1].Quantity)

	require.Len(t, res.Failures, 2)
	assert.Equal(t, 2, res.Failures[0].ID)
	assert.Equal(t, 4, res.Failures[1].ID)

	assert.Equal(t, int32(5), lookup.calls.Load(), "every id is looked up once")
}

func TestEnrich_AllFailed(t *testing.T) {
	lookup := &fakeLookup{fail: map[int]bool{1: true, 2: true}}
	e := New(lookup, Options{})

	cards, err := e.Enrich(context.Background(), []ydk.Entry{{ID: 1, Count: 1}, {ID: 2, Count: 1}})
	assert.Nil(t, cards)

	var enrichErr *EnrichmentError
	require.True(t, errors.As(err, &enrichErr), "error = %v", err)
	assert.Equal(t, 2, enrichErr.Attempted)
	assert.Len(t, enrichErr.Failures, 2)
	assert.True(t, IsEnrichmentError(err))
}

func TestEnrich_EmptyInput(t *testing.T) {
	e := New(&fakeLookup{}, Options{})

	_, err := e.Enrich(context.Background(), nil)
	assert.True(t, IsEnrichmentError(err))
}

func TestEnrich_MapsCatalogFields(t *testing.T) {
	atk, def, level := 0, 1800, 3
	ash := catalogCard(14558127, "Ash Blossom & Joyous Spring", "Tuner Monster",
		"When a card or effect is activated that includes any of these effects (Quick Effect): You can discard this card from your hand; negate that effect.")
	ash.Atk, ash.Def, ash.Level = &atk, &def, &level
	ash.Attribute = "FIRE"
	ash.BanlistInfo = &ygoprodeck.BanlistInfo{BanTCG: "Banned"}
	ash.CardSets = []ygoprodeck.CardSet{{SetName: "Maximum Crisis", SetCode: "MACR-EN036", SetRarity: "Secret Rare"}}

	e := New(&fakeLookup{cards: map[int]ygoprodeck.Card{14558127: ash}}, Options{})
	cards, err := e.Enrich(context.Background(), []ydk.Entry{{ID: 14558127, Count: 3}})
	require.NoError(t, err)
	require.Len(t, cards, 1)

	c := cards[0]
	assert.Equal(t, deck.CategoryMonster, c.Category)
	assert.Equal(t, deck.RoleHandTrap, c.Role)
	assert.Equal(t, deck.BanForbidden, c.BanStatus)
	assert.Equal(t, "https://images.example/14558127.jpg", c.ImageURL)
	assert.Equal(t, "1.00", c.Price.Cardmarket)
	require.NotNil(t, c.Def)
	assert.Equal(t, 1800, *c.Def)
	require.Len(t, c.CardSets, 1)
	assert.Equal(t, "MACR-EN036", c.CardSets[0].Code)
}

func TestEnrich_KeepsDeckFileID(t *testing.T) {
	// Alternate artwork ids resolve to the base card.
	e := New(&fakeLookup{cards: map[int]ygoprodeck.Card{89631140: catalogCard(89631139, "Blue-Eyes White Dragon", "Normal Monster", "")}}, Options{})

	cards, err := e.Enrich(context.Background(), []ydk.Entry{{ID: 89631140, Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, 89631140, cards[0].YugiohID)
}

func TestInferCategory(t *testing.T) {
	rules := DefaultCategoryRules()
	tests := []struct {
		cardType string
		want     deck.Category
	}{
		{"Spell Card", deck.CategorySpell},
		{"Trap Card", deck.CategoryTrap},
		{"Effect Monster", deck.CategoryMonster},
		{"Synchro Tuner Monster", deck.CategoryMonster},
		{"", deck.CategoryMonster},
	}

	for _, tt := range tests {
		t.Run(tt.cardType, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(rules, tt.cardType))
		})
	}
}

func TestInferRole(t *testing.T) {
	rules := DefaultRoleRules()
	tests := []struct {
		name string
		card string
		text string
		want deck.Role
	}{
		{name: "hand trap", card: "Ash Blossom", text: "You can discard this card from your HAND; negate the activation.", want: deck.RoleHandTrap},
		{name: "hand without disruption", card: "Card", text: "Add 1 card from your Deck to your hand.", want: deck.RoleNeutral},
		{name: "searcher", card: "Card", text: "Search your deck for 1 monster.", want: deck.RoleStarter},
		{name: "draw", card: "Pot of Greed", text: "Draw 2 cards.", want: deck.RoleStarter},
		{name: "starter by name", card: "Starter Dragon", text: "A vanilla dragon.", want: deck.RoleStarter},
		{name: "brick", card: "Boss", text: "Cannot be Normal Summoned/Set.", want: deck.RoleBrick},
		{name: "hand trap wins over starter", card: "Card", text: "Discard from hand; draw 1 card.", want: deck.RoleHandTrap},
		{name: "neutral", card: "Mirror Force", text: "Destroy all attack position monsters.", want: deck.RoleNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferRole(rules, tt.card, tt.text))
		})
	}
}

func TestCardFromCatalog_UserRole(t *testing.T) {
	e := New(&fakeLookup{}, Options{})
	c := catalogCard(1, "Pot of Greed", "Spell Card", "Draw 2 cards.")

	card := e.CardFromCatalog(&c, 2, deck.RoleBrick)
	assert.Equal(t, deck.RoleBrick, card.Role, "a chosen role overrides inference")
	assert.Equal(t, deck.CategorySpell, card.Category)
	assert.Equal(t, deck.BanUnlimited, card.BanStatus)
}

func TestCustomRules(t *testing.T) {
	e := New(&fakeLookup{cards: map[int]ygoprodeck.Card{1: catalogCard(1, "Maxx C", "Effect Monster", "Your opponent...")}},
		Options{RoleRules: []RoleRule{{Role: deck.RoleHandTrap, NameAny: []string{"maxx"}}}})

	cards, err := e.Enrich(context.Background(), []ydk.Entry{{ID: 1, Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, deck.RoleHandTrap, cards[0].Role)
}
