package dexscreener

import "fmt"

// FormatCurrency renders a USD value with K/M/B suffixes.
func FormatCurrency(value float64) string {
	switch {
	case value >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", value/1_000_000_000)
	case value >= 1_000_000:
		return fmt.Sprintf("$%.2fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("$%.2fK", value/1_000)
	case value >= 1:
		return fmt.Sprintf("$%.2f", value)
	default:
		// Small-cap tokens trade well below a cent; keep the precision.
		return fmt.Sprintf("$%.8f", value)
	}
}

// FormatPercentage renders a signed percentage, or N/A when the API
// did not report the window.
func FormatPercentage(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", *value)
}
