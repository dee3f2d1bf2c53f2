// Package router scores queries against agent categories and converts
// the scores into a single deterministic routing decision.
package router

import "github.com/tokensage/tokensage/pkg/models"

// CategoryKeywords is the single source of truth for the trigger terms
// each category matches on. The tables are used by the scorer; routing
// itself never inspects keywords.
type CategoryKeywords struct {
	// Market keywords indicate structured market-data lookups.
	Market []string

	// Analysis keywords indicate open-ended explanation or advice.
	// Generic interrogatives ("what", "when") are deliberately absent:
	// they appear in lookup queries just as often.
	Analysis []string

	// Swap keywords indicate trade intent.
	Swap []string
}

// DefaultKeywords returns the authoritative keyword mappings.
var DefaultKeywords = CategoryKeywords{
	Market: []string{
		"price",
		"token",
		"pair",
		"liquidity",
		"volume",
		"market cap",
		"mcap",
		"crypto",
		"dex",
		"trading",
		"chart",
		"eth",
		"btc",
		"sol",
	},

	Analysis: []string{
		"analyze",
		"analysis",
		"explain",
		"why",
		"how",
		"strategy",
		"opinion",
		"think",
		"should",
		"recommend",
		"forecast",
		"predict",
		"compare",
		"worth",
	},

	Swap: []string{
		"swap",
		"buy",
		"sell",
		"exchange",
		"convert",
		"slippage",
	},
}

// Registration binds a category to its detection inputs and its slot in
// the tie-break order. New categories are added by registering one of
// these; scoring and tie-break logic stay untouched.
type Registration struct {
	// Category is the agent category being registered.
	Category models.Category
	// Keywords are the trigger terms for this category.
	Keywords []string
	// Detector reports a structural signal strength in [0,1] for inputs
	// a keyword list cannot enumerate (addresses, trade phrasing).
	// May be nil.
	Detector Detector
	// Baseline is the floor score the category receives for any
	// non-empty query.
	Baseline float64
}

// DefaultRegistrations returns the built-in category registrations in
// priority order: market data beats swap beats analysis on ties, since
// structured answers are cheaper and more precise than generation.
func DefaultRegistrations() []Registration {
	return []Registration{
		{
			Category: models.CategoryMarket,
			Keywords: DefaultKeywords.Market,
			Detector: DetectTokenAddress,
		},
		{
			Category: models.CategorySwap,
			Keywords: DefaultKeywords.Swap,
			Detector: DetectSwapIntent,
		},
		{
			Category: models.CategoryAnalysis,
			Keywords: DefaultKeywords.Analysis,
			Baseline: analysisBaseline,
		},
	}
}

// analysisBaseline keeps analysis available as the default answer for
// queries with no strong market indicators.
const analysisBaseline = 0.3
