// Package stocks fetches a stock price listing over HTTP.
package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finreport/internal/log"
)

var ErrMissingAPIKey = errors.New("missing stock API key")

// Listing is one quote of the provider's price list.
type Listing struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Exchange string  `json:"exchange"`
}

// Lister returns the current price list.
type Lister interface {
	Listing(ctx context.Context) ([]Listing, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

var _ Lister = (*Client)(nil)

func New(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.OrDiscard(logger).WithComponent(log.ComponentStocks),
	}
}

// Listing requests the full price list. No request is made without an API
// key.
func (c *Client) Listing(ctx context.Context) ([]Listing, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stock list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get stock list: unexpected status %d", resp.StatusCode)
	}

	var out []Listing
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode stock list: %w", err)
	}
	c.logger.DebugContext(ctx, "Stock list received", log.FieldRows, len(out))
	return out, nil
}

// Select picks the listings of symbols in watch-list order. Unknown symbols
// are left out; the first listing of a duplicated symbol wins.
func Select(listings []Listing, symbols []string) []Listing {
	bySymbol := make(map[string]Listing, len(listings))
	for _, l := range listings {
		key := strings.ToUpper(l.Symbol)
		if _, ok := bySymbol[key]; !ok {
			bySymbol[key] = l
		}
	}
	out := make([]Listing, 0, len(symbols))
	for _, s := range symbols {
		if l, ok := bySymbol[strings.ToUpper(s)]; ok {
			out = append(out, l)
		}
	}
	return out
}
