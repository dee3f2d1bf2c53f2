// Package dexscreener is a minimal client for the public Dexscreener
// REST API, covering token pair lookups and free-text token search.
package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Dexscreener API root.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex"

// ErrNoPairs is returned when the API has no trading pairs for a token.
var ErrNoPairs = errors.New("no pairs found for token")

// Token identifies one side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PriceChange holds percentage price changes over standard windows.
// Pointers distinguish "zero change" from "not reported".
type PriceChange struct {
	M5  *float64 `json:"m5"`
	H1  *float64 `json:"h1"`
	H24 *float64 `json:"h24"`
}

// Liquidity holds pool liquidity figures in USD.
type Liquidity struct {
	USD float64 `json:"usd"`
}

// Volume holds trade volume figures.
type Volume struct {
	H24 float64 `json:"h24"`
}

// Pair is one trading pair as reported by Dexscreener.
type Pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	PairAddress string      `json:"pairAddress"`
	BaseToken   Token       `json:"baseToken"`
	QuoteToken  Token       `json:"quoteToken"`
	PriceUSD    string      `json:"priceUsd"`
	PriceChange PriceChange `json:"priceChange"`
	Liquidity   Liquidity   `json:"liquidity"`
	Volume      Volume      `json:"volume"`
	MarketCap   float64     `json:"marketCap"`
}

// Price returns the pair's USD price as a float, or 0 if unparseable.
func (p *Pair) Price() float64 {
	v, err := strconv.ParseFloat(p.PriceUSD, 64)
	if err != nil {
		return 0
	}
	return v
}

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}

// Client calls the Dexscreener API. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Dexscreener client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TokenPairs fetches all pairs for a token contract address and returns
// the most liquid one. Returns ErrNoPairs when the token is unknown.
func (c *Client) TokenPairs(ctx context.Context, address string) (*Pair, error) {
	var resp pairsResponse
	if err := c.get(ctx, "/tokens/"+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, ErrNoPairs
	}

	best := resp.Pairs[0]
	for _, pair := range resp.Pairs[1:] {
		if pair.Liquidity.USD > best.Liquidity.USD {
			best = pair
		}
	}
	return &best, nil
}

// Search runs a free-text pair search and returns up to limit pairs.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Pair, error) {
	var resp pairsResponse
	if err := c.get(ctx, "/search?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, ErrNoPairs
	}
	if limit > 0 && len(resp.Pairs) > limit {
		resp.Pairs = resp.Pairs[:limit]
	}
	return resp.Pairs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dexscreener request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dexscreener returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
