package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tokensage/tokensage/pkg/models"
)

// analysisSystemPrompt frames the model as a crypto analyst.
const analysisSystemPrompt = "You are a helpful crypto expert that can answer questions about tokens, markets and trading. " +
	"When market data is provided in the context, ground your answer in it. Be concise."

// Completer is the LLM capability the analysis agent needs.
// *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnalysisAgent answers open-ended questions through the LLM,
// grounding follow-ups in the enrichment context.
type AnalysisAgent struct {
	client Completer
}

// NewAnalysisAgent creates an AnalysisAgent backed by the given client.
func NewAnalysisAgent(client Completer) *AnalysisAgent {
	return &AnalysisAgent{client: client}
}

// Category implements Agent.
func (a *AnalysisAgent) Category() models.Category {
	return models.CategoryAnalysis
}

// Description implements Agent.
func (a *AnalysisAgent) Description() string {
	return "Explains market moves, compares tokens and gives open-ended crypto analysis using the conversation context."
}

// Process implements Agent.
func (a *AnalysisAgent) Process(ctx context.Context, query string, enrichment *Enrichment) (*models.Result, error) {
	prompt := BuildPrompt(query, enrichment)

	reply, err := a.client.Complete(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis completion: %w", err)
	}
	return models.NewResult(models.CategoryAnalysis, reply, nil), nil
}

// BuildPrompt merges the raw query with enrichment context. Exported so
// the orchestrator tests can assert on the exact prompt an analysis
// agent receives.
func BuildPrompt(query string, enrichment *Enrichment) string {
	if enrichment == nil {
		return query
	}

	var sb strings.Builder
	if enrichment.Summary != "" {
		sb.WriteString(enrichment.Summary)
		sb.WriteString("\n\n")
	}
	if len(enrichment.MarketData) > 0 {
		sb.WriteString("Current market data:\n")
		for _, key := range []string{"name", "symbol", "price", "market_cap", "liquidity", "volume_24h", "chain", "dex"} {
			if value, ok := enrichment.MarketData[key]; ok {
				fmt.Fprintf(&sb, "  %s: %v\n", key, value)
			}
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return query
	}
	fmt.Fprintf(&sb, "Query: %s", query)
	return sb.String()
}
