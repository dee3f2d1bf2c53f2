// Package orchestrator wires the scorer, router, context store, and
// agent registry into the single entry point callers use to handle a
// query.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tokensage/tokensage/internal/agents"
	"github.com/tokensage/tokensage/internal/contextstore"
	"github.com/tokensage/tokensage/internal/router"
	"github.com/tokensage/tokensage/pkg/models"
)

// DefaultDispatchTimeout bounds a single agent dispatch.
const DefaultDispatchTimeout = 30 * time.Second

// stage names the orchestrator's processing states, in order. A query
// always ends in completed or failed.
type stage string

const (
	stageReceived   stage = "received"
	stageScored     stage = "scored"
	stageRouted     stage = "routed"
	stageDispatched stage = "dispatched"
	stageCompleted  stage = "completed"
	stageFailed     stage = "failed"
)

// Recorder persists completed interactions. Persistence is best-effort:
// a Record failure is logged and never surfaces to the caller.
type Recorder interface {
	Record(ctx context.Context, interaction models.Interaction) error
}

// Orchestrator coordinates one session's query handling. All
// collaborators are injected at construction; there is no registration
// after New.
type Orchestrator struct {
	scorer   *router.Scorer
	router   *router.Router
	store    *contextstore.Store
	registry *agents.Registry
	recorder Recorder
	timeout  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDispatchTimeout overrides the per-dispatch timeout.
func WithDispatchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRecorder attaches a persistence sink for completed interactions.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// New creates an Orchestrator. Every routable category should have a
// registered agent; a decision without one fails that query at dispatch.
func New(scorer *router.Scorer, rt *router.Router, store *contextstore.Store, registry *agents.Registry, opts ...Option) (*Orchestrator, error) {
	if scorer == nil || rt == nil || store == nil || registry == nil {
		return nil, fmt.Errorf("orchestrator requires scorer, router, store, and registry")
	}
	o := &Orchestrator{
		scorer:   scorer,
		router:   rt,
		store:    store,
		registry: registry,
		timeout:  DefaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// HandleQuery runs one query through score, route, and dispatch. It
// never returns an error: every failure becomes a Result with
// StatusError so callers have a single result path. Only successful
// results are appended to the context window; a failed dispatch leaves
// the window exactly as it was.
func (o *Orchestrator) HandleQuery(ctx context.Context, input string) *models.Result {
	id := uuid.New().String()
	log.Printf("[orchestrator] %s %s: %q", id, stageReceived, truncate(input, 80))

	snapshot := o.store.Snapshot()
	scores := o.scorer.Score(input, snapshot.Window)
	log.Printf("[orchestrator] %s %s: %v", id, stageScored, scores.Confidence)

	decision := o.router.Route(scores, snapshot.Window)
	log.Printf("[orchestrator] %s %s: %s (%.2f, %s)", id, stageRouted, decision.Category, decision.Score, decision.Reason)

	var result *models.Result
	if decision.Category == models.CategoryComposite {
		result = o.dispatchComposite(ctx, id, input, snapshot)
	} else {
		result = o.dispatch(ctx, id, input, decision.Category, o.enrichment(decision.Category, snapshot))
	}

	if !result.OK() {
		log.Printf("[orchestrator] %s %s: %s", id, stageFailed, truncate(result.Response, 120))
		return result
	}

	interaction := models.Interaction{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Query:     input,
		Response:  result,
		AgentType: result.Type,
	}
	o.store.Append(interaction)
	if o.recorder != nil {
		if err := o.recorder.Record(ctx, interaction); err != nil {
			log.Printf("[orchestrator] %s record failed: %v", id, err)
		}
	}
	log.Printf("[orchestrator] %s %s", id, stageCompleted)
	return result
}

// dispatch calls one agent with a bounded context. Agent errors and
// timeouts become error results attributed to the target category.
func (o *Orchestrator) dispatch(ctx context.Context, id, input string, category models.Category, enrichment *agents.Enrichment) *models.Result {
	agent, ok := o.registry.Get(category)
	if !ok {
		return models.NewErrorResult(category,
			fmt.Sprintf("No agent is registered for %q queries.", category))
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	log.Printf("[orchestrator] %s %s: %s", id, stageDispatched, category)
	result, err := agent.Process(dispatchCtx, input, enrichment)
	if err != nil {
		if dispatchCtx.Err() == context.DeadlineExceeded {
			return models.NewErrorResult(category,
				fmt.Sprintf("The %s agent timed out. Please try again.", category))
		}
		return models.NewErrorResult(category,
			fmt.Sprintf("The %s agent failed: %v", category, err))
	}
	if result == nil {
		return models.NewErrorResult(category,
			fmt.Sprintf("The %s agent returned no result.", category))
	}
	return result
}

// dispatchComposite runs the market leg first, then the analysis leg
// with the market payload forwarded, and merges both into a single
// composite result. A failed market leg degrades to plain analysis; a
// failed analysis leg fails the query.
func (o *Orchestrator) dispatchComposite(ctx context.Context, id, input string, snapshot contextstore.Snapshot) *models.Result {
	enrichment := o.enrichment(models.CategoryAnalysis, snapshot)

	market := o.dispatch(ctx, id, input, models.CategoryMarket, &agents.Enrichment{Metadata: snapshot.Metadata})
	if market.OK() {
		enrichment.MarketData = market.Data
	} else {
		log.Printf("[orchestrator] %s composite market leg failed, continuing with analysis only", id)
	}

	analysis := o.dispatch(ctx, id, input, models.CategoryAnalysis, enrichment)
	if !analysis.OK() {
		return models.NewErrorResult(models.CategoryComposite, analysis.Response)
	}

	data := make(map[string]any, len(market.Data)+len(analysis.Data))
	if market.OK() {
		for k, v := range market.Data {
			data[k] = v
		}
	}
	for k, v := range analysis.Data {
		data[k] = v
	}
	if len(data) == 0 {
		data = nil
	}

	response := analysis.Response
	if market.OK() && market.Response != "" {
		response = market.Response + "\n\n" + analysis.Response
	}
	return models.NewResult(models.CategoryComposite, response, data)
}

// enrichment builds the context an agent receives. Market lookups get
// only the metadata map; every other target also gets a natural-language
// summary of the last discussed token so prompts stay self-contained.
func (o *Orchestrator) enrichment(target models.Category, snapshot contextstore.Snapshot) *agents.Enrichment {
	e := &agents.Enrichment{Metadata: snapshot.Metadata}
	if target == models.CategoryMarket {
		return e
	}
	e.Summary = contextSummary(snapshot.Metadata)
	return e
}

// contextSummary renders the metadata map as one sentence, or "" when
// no token has been discussed yet.
func contextSummary(metadata map[string]string) string {
	token := metadata["last_token"]
	if token == "" {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Context: Last token discussed was %s", token)
	if price := metadata["last_price"]; price != "" {
		fmt.Fprintf(&sb, " at price %s", price)
	}
	if chain := metadata["last_chain"]; chain != "" {
		fmt.Fprintf(&sb, " on %s", chain)
	}
	sb.WriteString(".")
	return sb.String()
}

// Reset clears the session's context window and metadata.
func (o *Orchestrator) Reset() {
	o.store.Reset()
	log.Printf("[orchestrator] context reset")
}

// Restore replays previously persisted interactions into the context
// window, oldest first. Metadata is rebuilt from the replayed payloads.
func (o *Orchestrator) Restore(interactions []models.Interaction) {
	for _, interaction := range interactions {
		o.store.Append(interaction)
	}
	if n := len(interactions); n > 0 {
		log.Printf("[orchestrator] restored %d interactions", n)
	}
}

// Context returns a snapshot of the current window and metadata.
func (o *Orchestrator) Context() contextstore.Snapshot {
	return o.store.Snapshot()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
