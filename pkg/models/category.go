package models

// Category identifies the class of agent a query is routed to.
type Category string

const (
	// CategoryMarket is for structured market-data lookups (prices, pairs, liquidity).
	CategoryMarket Category = "market"
	// CategoryAnalysis is for open-ended analysis and explanation via the LLM.
	CategoryAnalysis Category = "analysis"
	// CategorySwap is for token swap quoting and intent parsing.
	CategorySwap Category = "swap"
	// CategoryComposite marks an interaction answered by a market fetch
	// followed by an analysis pass over the fetched data.
	CategoryComposite Category = "composite"
	// CategoryNone is the explicit "no selection" sentinel.
	CategoryNone Category = "none"
)

// Valid returns true if the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryMarket, CategoryAnalysis, CategorySwap, CategoryComposite, CategoryNone:
		return true
	default:
		return false
	}
}

// Continuity returns the category that follow-up queries should lean toward
// after an interaction of this category. Composite interactions resolve to
// analysis, since the analysis half is the user-facing narrative.
func (c Category) Continuity() Category {
	if c == CategoryComposite {
		return CategoryAnalysis
	}
	return c
}
