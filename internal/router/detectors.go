package router

import "regexp"

// Detector reports a structural signal strength in [0,1] for a query.
// Detectors must be pure: same query, same result.
type Detector func(query string) float64

var (
	// tokenAddressPattern matches EVM-style contract addresses.
	tokenAddressPattern = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

	// swapIntentPattern matches trade phrasing like "swap 10 ETH for USDC".
	swapIntentPattern = regexp.MustCompile(`(?i)\b(swap|buy|sell|convert|trade)\b.+\b(for|to|into|with)\b`)
)

// addressConfidence is the score a bare contract address earns for the
// market category. Addresses are domain identifiers no keyword list can
// enumerate, so the signal dominates keyword hits.
const addressConfidence = 0.9

// swapIntentConfidence is the score trade phrasing earns for swap.
const swapIntentConfidence = 0.75

// DetectTokenAddress reports a strong market signal when the query
// contains a contract-address-shaped token.
func DetectTokenAddress(query string) float64 {
	if tokenAddressPattern.MatchString(query) {
		return addressConfidence
	}
	return 0
}

// ExtractTokenAddress returns the first contract address in the query,
// or the empty string.
func ExtractTokenAddress(query string) string {
	return tokenAddressPattern.FindString(query)
}

// DetectSwapIntent reports a swap signal for "swap X for Y" phrasing.
func DetectSwapIntent(query string) float64 {
	if swapIntentPattern.MatchString(query) {
		return swapIntentConfidence
	}
	return 0
}
