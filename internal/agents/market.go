package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tokensage/tokensage/internal/dexscreener"
	"github.com/tokensage/tokensage/internal/router"
	"github.com/tokensage/tokensage/pkg/models"
)

// searchLimit bounds how many pairs a free-text token search reports.
const searchLimit = 3

// MarketAgent answers market-data queries from the Dexscreener API:
// price lookups by contract address and free-text token search.
type MarketAgent struct {
	client *dexscreener.Client
}

// NewMarketAgent creates a MarketAgent backed by the given client.
func NewMarketAgent(client *dexscreener.Client) *MarketAgent {
	return &MarketAgent{client: client}
}

// Category implements Agent.
func (a *MarketAgent) Category() models.Category {
	return models.CategoryMarket
}

// Description implements Agent.
func (a *MarketAgent) Description() string {
	return "Fetches live token market data from Dexscreener: price, liquidity, volume, market cap and recent price changes, by contract address or token name."
}

// Process implements Agent. Queries containing a contract address get a
// full price report for the most liquid pair; anything else becomes a
// token search.
func (a *MarketAgent) Process(ctx context.Context, query string, _ *Enrichment) (*models.Result, error) {
	if address := router.ExtractTokenAddress(query); address != "" {
		return a.priceReport(ctx, address)
	}
	return a.search(ctx, query)
}

func (a *MarketAgent) priceReport(ctx context.Context, address string) (*models.Result, error) {
	pair, err := a.client.TokenPairs(ctx, address)
	if err != nil {
		if errors.Is(err, dexscreener.ErrNoPairs) {
			return models.NewErrorResult(models.CategoryMarket, "No market data found for this token."), nil
		}
		return nil, fmt.Errorf("fetch token pairs: %w", err)
	}

	price := dexscreener.FormatCurrency(pair.Price())
	data := map[string]any{
		"name":         pair.BaseToken.Name,
		"symbol":       pair.BaseToken.Symbol,
		"price":        price,
		"chain":        pair.ChainID,
		"dex":          pair.DexID,
		"pair_address": pair.PairAddress,
		"liquidity":    dexscreener.FormatCurrency(pair.Liquidity.USD),
		"volume_24h":   dexscreener.FormatCurrency(pair.Volume.H24),
		"price_changes": map[string]string{
			"5m":  dexscreener.FormatPercentage(pair.PriceChange.M5),
			"1h":  dexscreener.FormatPercentage(pair.PriceChange.H1),
			"24h": dexscreener.FormatPercentage(pair.PriceChange.H24),
		},
	}
	if pair.MarketCap > 0 {
		data["market_cap"] = dexscreener.FormatCurrency(pair.MarketCap)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", pair.BaseToken.Name, pair.BaseToken.Symbol)
	fmt.Fprintf(&sb, "Price: %s\n", price)
	fmt.Fprintf(&sb, "Changes: 5m %s | 1h %s | 24h %s\n",
		dexscreener.FormatPercentage(pair.PriceChange.M5),
		dexscreener.FormatPercentage(pair.PriceChange.H1),
		dexscreener.FormatPercentage(pair.PriceChange.H24))
	if pair.MarketCap > 0 {
		fmt.Fprintf(&sb, "Market cap: %s\n", dexscreener.FormatCurrency(pair.MarketCap))
	}
	fmt.Fprintf(&sb, "Liquidity: %s | 24h volume: %s\n",
		dexscreener.FormatCurrency(pair.Liquidity.USD),
		dexscreener.FormatCurrency(pair.Volume.H24))
	fmt.Fprintf(&sb, "Chain: %s | DEX: %s", pair.ChainID, pair.DexID)

	return models.NewResult(models.CategoryMarket, sb.String(), data), nil
}

func (a *MarketAgent) search(ctx context.Context, query string) (*models.Result, error) {
	pairs, err := a.client.Search(ctx, query, searchLimit)
	if err != nil {
		if errors.Is(err, dexscreener.ErrNoPairs) {
			return models.NewErrorResult(models.CategoryMarket, "No tokens matched that search."), nil
		}
		return nil, fmt.Errorf("search tokens: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Top matches:\n")
	for _, pair := range pairs {
		fmt.Fprintf(&sb, "- %s (%s) %s on %s via %s\n",
			pair.BaseToken.Name, pair.BaseToken.Symbol,
			dexscreener.FormatCurrency(pair.Price()),
			pair.ChainID, pair.DexID)
	}

	// Metadata tracks the best match so follow-ups have a referent.
	best := pairs[0]
	data := map[string]any{
		"symbol": best.BaseToken.Symbol,
		"price":  dexscreener.FormatCurrency(best.Price()),
		"chain":  best.ChainID,
	}
	return models.NewResult(models.CategoryMarket, strings.TrimRight(sb.String(), "\n"), data), nil
}
