// Package exchange looks up USD to local-currency exchange rates from an
// external service. The pricing engine never sees these rates; they are
// applied at the display boundary.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL = "https://open.er-api.com/v6/latest/USD"
	DefaultTTL = time.Hour
)

type ratesResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// Cache stores rates between lookups.
type Cache interface {
	Get(ctx context.Context, code string) (float64, bool, error)
	Set(ctx context.Context, code string, rate float64, ttl time.Duration) error
}

// Client fetches exchange rates and caches them for a TTL.
type Client struct {
	url   string
	ttl   time.Duration
	http  *http.Client
	cache Cache
}

// NewClient returns a Client. Empty url and zero ttl fall back to the defaults;
// a nil cache uses an in-process MemoryCache.
func NewClient(url string, ttl time.Duration, httpClient *http.Client, cache Cache) *Client {
	if url == "" {
		url = DefaultURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Client{url: url, ttl: ttl, http: httpClient, cache: cache}
}

// Rate returns how many units of code one USD buys.
func (c *Client) Rate(ctx context.Context, code string) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, fmt.Errorf("currency code is required")
	}
	if code == "USD" {
		return 1, nil
	}

	rate, ok, err := c.cache.Get(ctx, code)
	if err != nil {
		log.Printf("warning: exchange rate cache read failed: %v", err)
	} else if ok {
		return rate, nil
	}

	rates, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}

	rate, ok = rates[code]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("currency %s not found in exchange rate response", code)
	}

	if err := c.cache.Set(ctx, code, rate, c.ttl); err != nil {
		log.Printf("warning: exchange rate cache write failed: %v", err)
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build exchange rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch exchange rates: unexpected status %s", resp.Status)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode exchange rates: %w", err)
	}
	if body.Result != "success" || len(body.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate service returned result %q", body.Result)
	}

	return body.Rates, nil
}
