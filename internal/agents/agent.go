// Package agents defines the capability interface every specialized
// agent implements, plus the registry the orchestrator dispatches
// through.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tokensage/tokensage/pkg/models"
)

// Enrichment carries the context an agent receives beyond the raw
// query. Lookup agents can ignore it; analysis agents fold it into
// their prompts.
type Enrichment struct {
	// Summary is a natural-language recap of recent context
	// ("Last token discussed was ETH at price $2500 on ethereum.").
	Summary string
	// Metadata is the current cross-agent metadata map.
	Metadata map[string]string
	// MarketData holds the structured payload from a preceding market
	// dispatch when this call is the second leg of a composite query.
	MarketData map[string]any
}

// Agent is the capability interface implemented by external
// collaborators. Implementations must be safe for concurrent use.
type Agent interface {
	// Category is the stable identifier used in routing decisions.
	Category() models.Category
	// Description is free text used for registration and docs; the
	// core never parses it at runtime.
	Description() string
	// Process answers one query. Errors are reported via the returned
	// error or a Result with StatusError; implementations must honor
	// ctx cancellation.
	Process(ctx context.Context, query string, enrichment *Enrichment) (*models.Result, error)
}

// Registry holds the registered agents keyed by category. It is
// immutable after construction.
type Registry struct {
	agents map[models.Category]Agent
	order  []models.Category
}

// NewRegistry creates a Registry, verifying at construction time that
// every agent has a usable, unique category.
func NewRegistry(agentList ...Agent) (*Registry, error) {
	if len(agentList) == 0 {
		return nil, fmt.Errorf("no agents registered")
	}

	agents := make(map[models.Category]Agent, len(agentList))
	order := make([]models.Category, 0, len(agentList))
	for _, a := range agentList {
		cat := a.Category()
		if cat == "" || cat == models.CategoryNone {
			return nil, fmt.Errorf("agent %T has no category", a)
		}
		if _, dup := agents[cat]; dup {
			return nil, fmt.Errorf("duplicate agent for category %q", cat)
		}
		agents[cat] = a
		order = append(order, cat)
	}
	return &Registry{agents: agents, order: order}, nil
}

// Get returns the agent for a category.
func (r *Registry) Get(category models.Category) (Agent, bool) {
	a, ok := r.agents[category]
	return a, ok
}

// Categories returns the registered categories in registration order.
func (r *Registry) Categories() []models.Category {
	out := make([]models.Category, len(r.order))
	copy(out, r.order)
	return out
}

// Describe returns a registration summary, one agent per line.
func (r *Registry) Describe() string {
	var sb strings.Builder
	for _, cat := range r.order {
		fmt.Fprintf(&sb, "%s: %s\n", cat, r.agents[cat].Description())
	}
	return sb.String()
}
