package ygoprodeck

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// Card is a card as returned by the cardinfo endpoint.
type Card struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	FrameType   string       `json:"frameType"`
	Desc        string       `json:"desc"`
	Race        string       `json:"race"`
	Archetype   string       `json:"archetype,omitempty"`
	Atk         *int         `json:"atk,omitempty"`
	Def         *int         `json:"def,omitempty"`
	Level       *int         `json:"level,omitempty"`
	Attribute   string       `json:"attribute,omitempty"`
	CardSets    []CardSet    `json:"card_sets,omitempty"`
	CardImages  []CardImage  `json:"card_images"`
	CardPrices  []CardPrice  `json:"card_prices"`
	BanlistInfo *BanlistInfo `json:"banlist_info,omitempty"`
}

// CardSet is a printing of a card.
type CardSet struct {
	SetName   string `json:"set_name"`
	SetCode   string `json:"set_code"`
	SetRarity string `json:"set_rarity"`
	SetPrice  string `json:"set_price"`
}

// CardImage holds the artwork URLs of a card.
type CardImage struct {
	ID              int    `json:"id"`
	ImageURL        string `json:"image_url"`
	ImageURLSmall   string `json:"image_url_small"`
	ImageURLCropped string `json:"image_url_cropped,omitempty"`
}

// CardPrice holds vendor prices as decimal strings.
type CardPrice struct {
	CardmarketPrice string `json:"cardmarket_price"`
	TCGPlayerPrice  string `json:"tcgplayer_price"`
	EbayPrice       string `json:"ebay_price"`
	AmazonPrice     string `json:"amazon_price"`
	CoolStuffPrice  string `json:"coolstuffinc_price"`
}

// BanlistInfo holds a card's status per format. Absent formats are unlimited.
type BanlistInfo struct {
	BanTCG  string `json:"ban_tcg,omitempty"`
	BanOCG  string `json:"ban_ocg,omitempty"`
	BanGOAT string `json:"ban_goat,omitempty"`
}

// cardInfoResponse is the envelope of the cardinfo endpoint.
type cardInfoResponse struct {
	Data []Card `json:"data"`
}

// TCGBanStatus returns the normalized TCG ban status of the card.
func (c *Card) TCGBanStatus() deck.BanStatus {
	if c.BanlistInfo == nil {
		return deck.BanUnlimited
	}
	return deck.NormalizeBanStatus(c.BanlistInfo.BanTCG)
}

// ImageURL returns the first full-size image URL, if any.
func (c *Card) ImageURL() string {
	if len(c.CardImages) == 0 {
		return ""
	}
	return c.CardImages[0].ImageURL
}

// Price returns the first price entry as a deck price.
func (c *Card) Price() deck.Price {
	if len(c.CardPrices) == 0 {
		return deck.Price{}
	}
	p := c.CardPrices[0]
	return deck.Price{
		Cardmarket: p.CardmarketPrice,
		TCGPlayer:  p.TCGPlayerPrice,
		Ebay:       p.EbayPrice,
		Amazon:     p.AmazonPrice,
		CoolStuff:  p.CoolStuffPrice,
	}
}

// Sets converts the card's printings to deck card sets.
func (c *Card) Sets() []deck.CardSet {
	if len(c.CardSets) == 0 {
		return nil
	}
	sets := make([]deck.CardSet, len(c.CardSets))
	for i, s := range c.CardSets {
		sets[i] = deck.CardSet{Name: s.SetName, Code: s.SetCode, Rarity: s.SetRarity, Price: s.SetPrice}
	}
	return sets
}

// BanListCard is a compact ban list entry.
type BanListCard struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Race        string         `json:"race"`
	ImageURL    string         `json:"image_url"`
	BanStatus   deck.BanStatus `json:"ban_status"`
	Description string         `json:"description"`
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	return fmt.Sprintf("YGOPRODeck API error (HTTP %d): %s", e.Status, e.Message)
}

// NotFoundError is returned when no card matches a query.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no card found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
