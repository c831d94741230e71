// Package ygoprodeck is a rate-limited client for the YGOPRODeck card database API.
package ygoprodeck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

const (
	DefaultBaseURL = "https://db.ygoprodeck.com/api/v7"

	// The API allows 20 requests per second; stay well below it.
	defaultRateLimit      = 100 * time.Millisecond
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 3
	defaultBackoff        = 1 * time.Second
	maxBackoff            = 16 * time.Second

	// MinSearchLength is the shortest name fragment a search is issued for.
	MinSearchLength = 3

	// DefaultSearchLimit caps the number of search results returned.
	DefaultSearchLimit = 10
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  time.Duration // minimum spacing between requests
	MaxRetries int
	Backoff    time.Duration // initial retry backoff, doubled per attempt
	UserAgent  string
}

// DefaultClientOptions returns sensible defaults.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:    DefaultBaseURL,
		Timeout:    defaultRequestTimeout,
		RateLimit:  defaultRateLimit,
		MaxRetries: defaultMaxRetries,
		Backoff:    defaultBackoff,
		UserAgent:  "DeckOps/1.0",
	}
}

// Client represents a YGOPRODeck API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	maxRetries  int
	backoff     time.Duration
}

// NewClient creates a new API client. Zero-valued options fall back to defaults.
func NewClient(opts ClientOptions) *Client {
	def := DefaultClientOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = def.RateLimit
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff == 0 {
		opts.Backoff = def.Backoff
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimit), 1),
		userAgent:   opts.UserAgent,
		maxRetries:  opts.MaxRetries,
		backoff:     opts.Backoff,
	}
}

// GetCardByID retrieves a card by its passcode.
func (c *Client) GetCardByID(ctx context.Context, id int) (*Card, error) {
	u := c.cardInfoURL(url.Values{"id": {strconv.Itoa(id)}})

	var resp cardInfoResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("failed to get card %d: %w", id, &NotFoundError{URL: u})
	}

	return &resp.Data[0], nil
}

// SearchByName performs a fuzzy name search and returns at most limit cards.
// Queries shorter than MinSearchLength return no results without a request.
// A query with no matches is not an error.
func (c *Client) SearchByName(ctx context.Context, name string, limit int) ([]Card, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinSearchLength {
		return []Card{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	u := c.cardInfoURL(url.Values{"fname": {name}})

	var resp cardInfoResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		if IsNotFound(err) {
			return []Card{}, nil
		}
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", name, err)
	}

	if len(resp.Data) > limit {
		resp.Data = resp.Data[:limit]
	}
	return resp.Data, nil
}

// GetBanList retrieves every card on the given format's ban list ("tcg", "ocg" or "goat").
func (c *Client) GetBanList(ctx context.Context, format string) ([]BanListCard, error) {
	format = strings.ToLower(format)
	u := c.cardInfoURL(url.Values{"banlist": {format}})

	var resp cardInfoResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to get %s ban list: %w", format, err)
	}

	cards := make([]BanListCard, 0, len(resp.Data))
	for i := range resp.Data {
		card := &resp.Data[i]
		cards = append(cards, BanListCard{
			ID:          card.ID,
			Name:        card.Name,
			Type:        card.Type,
			Race:        card.Race,
			ImageURL:    card.ImageURL(),
			BanStatus:   card.banStatus(format),
			Description: card.Desc,
		})
	}

	return cards, nil
}

func (c *Card) banStatus(format string) deck.BanStatus {
	if c.BanlistInfo == nil {
		return deck.BanUnlimited
	}
	switch format {
	case "ocg":
		return deck.NormalizeBanStatus(c.BanlistInfo.BanOCG)
	case "goat":
		return deck.NormalizeBanStatus(c.BanlistInfo.BanGOAT)
	}
	return deck.NormalizeBanStatus(c.BanlistInfo.BanTCG)
}

func (c *Client) cardInfoURL(q url.Values) string {
	return fmt.Sprintf("%s/cardinfo.php?%s", c.baseURL, q.Encode())
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Retry on network errors
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
			// The API answers 400 with an error message when nothing matches.
			return &NotFoundError{URL: u}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = apiError(resp.StatusCode, body)
			continue

		default:
			return apiError(resp.StatusCode, body)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func apiError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
