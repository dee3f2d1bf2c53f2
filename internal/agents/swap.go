package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tokensage/tokensage/pkg/models"
)

// swapQueryPattern captures "swap 10 ETH for USDC" style intents:
// verb, optional amount, input token, connector, output token.
var swapQueryPattern = regexp.MustCompile(`(?i)\b(swap|convert|trade|exchange|sell)\s+([\d.]+)?\s*([a-zA-Z0-9]{2,10})\s+(?:for|to|into)\s+([a-zA-Z0-9]{2,10})`)

// buyQueryPattern captures "buy 10 PEPE with ETH" style intents.
var buyQueryPattern = regexp.MustCompile(`(?i)\bbuy\s+([\d.]+)?\s*([a-zA-Z0-9]{2,10})(?:\s+(?:with|using)\s+([a-zA-Z0-9]{2,10}))?`)

// supportedChains lists the chains swap quoting covers, with their
// preferred DEX.
var supportedChains = map[string]string{
	"ethereum": "uniswap",
	"solana":   "raydium",
	"base":     "baseswap",
}

// defaultChain is used when the conversation has no chain context.
const defaultChain = "ethereum"

// SwapQuote is the parsed trade intent a swap query resolves to.
type SwapQuote struct {
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	Amount   string `json:"amount,omitempty"`
	Chain    string `json:"chain"`
	Dex      string `json:"dex"`
}

// SwapAgent parses trade intents and answers with a structured quote.
// Quote execution requires a connected wallet and is handled outside
// this core; the agent only prepares the route.
type SwapAgent struct{}

// NewSwapAgent creates a SwapAgent.
func NewSwapAgent() *SwapAgent {
	return &SwapAgent{}
}

// Category implements Agent.
func (a *SwapAgent) Category() models.Category {
	return models.CategorySwap
}

// Description implements Agent.
func (a *SwapAgent) Description() string {
	return "Parses token swap intents (swap/buy/sell X for Y) and prepares a quote route on the discussed chain."
}

// Process implements Agent.
func (a *SwapAgent) Process(_ context.Context, query string, enrichment *Enrichment) (*models.Result, error) {
	quote, ok := parseSwapQuery(query)
	if !ok {
		return models.NewErrorResult(models.CategorySwap,
			"I couldn't determine what kind of swap you want. Try something like \"swap 10 ETH for USDC\"."), nil
	}

	// Fall back to the conversation's last token or chain when the
	// query leaves one side implicit.
	if enrichment != nil {
		if quote.TokenIn == "" {
			quote.TokenIn = enrichment.Metadata["last_token"]
		}
		if dex, ok := supportedChains[enrichment.Metadata["last_chain"]]; ok {
			quote.Chain = enrichment.Metadata["last_chain"]
			quote.Dex = dex
		}
	}
	if quote.Chain == "" {
		quote.Chain = defaultChain
		quote.Dex = supportedChains[defaultChain]
	}
	if quote.TokenIn == "" || quote.TokenOut == "" {
		return models.NewErrorResult(models.CategorySwap,
			"I need both sides of the trade. Which token are you swapping, and for what?"), nil
	}

	amount := quote.Amount
	if amount == "" {
		amount = "an unspecified amount of"
	}
	message := fmt.Sprintf("Quote ready: %s %s -> %s on %s via %s. Connect a wallet to execute.",
		amount, quote.TokenIn, quote.TokenOut, quote.Chain, quote.Dex)

	data := map[string]any{
		"token_in":  quote.TokenIn,
		"token_out": quote.TokenOut,
		"chain":     quote.Chain,
		"dex":       quote.Dex,
	}
	if quote.Amount != "" {
		data["amount"] = quote.Amount
	}
	return models.NewResult(models.CategorySwap, message, data), nil
}

// parseSwapQuery extracts a trade intent from free text.
func parseSwapQuery(query string) (SwapQuote, bool) {
	if m := swapQueryPattern.FindStringSubmatch(query); m != nil {
		return SwapQuote{
			Amount:   m[2],
			TokenIn:  strings.ToUpper(m[3]),
			TokenOut: strings.ToUpper(m[4]),
		}, true
	}
	if m := buyQueryPattern.FindStringSubmatch(query); m != nil {
		quote := SwapQuote{
			Amount:   m[1],
			TokenOut: strings.ToUpper(m[2]),
		}
		if m[3] != "" {
			quote.TokenIn = strings.ToUpper(m[3])
		}
		return quote, true
	}
	return SwapQuote{}, false
}
