// Package marks reads prices and platform metrics from the exchange's
// public API for prompt grounding. Generation must keep working when the
// exchange is unreachable, so every method degrades to an "unavailable"
// string instead of failing.
package marks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type ticker struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	Change24h float64 `json:"change_24h_pct"`
	Volume24h float64 `json:"volume_24h"`
}

type metrics struct {
	OpenInterest  float64 `json:"open_interest"`
	Volume24h     float64 `json:"volume_24h"`
	ActiveTraders int     `json:"active_traders_24h"`
	TopMarket     string  `json:"top_market"`
}

// MarketSummary renders current perp prices as prompt text.
func (c *Client) MarketSummary(ctx context.Context) string {
	var tickers []ticker
	if err := c.get(ctx, "/v1/markets/tickers", &tickers); err != nil || len(tickers) == 0 {
		return "Market data unavailable."
	}
	var b strings.Builder
	for i, t := range tickers {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "%s: $%.2f (%+.1f%% 24h)\n", t.Symbol, t.LastPrice, t.Change24h)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PlatformMetrics renders exchange activity as prompt text.
func (c *Client) PlatformMetrics(ctx context.Context) string {
	var m metrics
	if err := c.get(ctx, "/v1/stats", &m); err != nil {
		return "Platform metrics unavailable."
	}
	return fmt.Sprintf("24h volume: $%.0f, open interest: $%.0f, active traders: %d, busiest market: %s",
		m.Volume24h, m.OpenInterest, m.ActiveTraders, m.TopMarket)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("no exchange api configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
