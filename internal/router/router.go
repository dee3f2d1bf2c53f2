package router

import (
	"fmt"

	"github.com/tokensage/tokensage/pkg/models"
)

// Config holds the routing policy knobs. All are fixed at construction.
type Config struct {
	// Threshold is the minimum confidence a category needs to be
	// selected outright.
	Threshold float64
	// Epsilon is the score distance within which two categories count
	// as tied.
	Epsilon float64
	// Priority is the tie-break order, highest precedence first. Only
	// listed categories can win a route.
	Priority []models.Category
	// Default is the category used when neither scores nor continuity
	// produce a selection.
	Default models.Category
	// EnableComposite allows a market+analysis composite decision when
	// a query carries both a structural market identifier and analysis
	// intent above threshold.
	EnableComposite bool
}

// DefaultConfig returns the routing policy used in production.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.6,
		Epsilon:         0.05,
		Priority:        []models.Category{models.CategoryMarket, models.CategorySwap, models.CategoryAnalysis},
		Default:         models.CategoryAnalysis,
		EnableComposite: true,
	}
}

// Router converts confidence scores into a single decision. It performs
// no I/O and holds no state between calls.
type Router struct {
	cfg Config
}

// New creates a Router with the given policy. Zero-value fields fall
// back to the defaults.
func New(cfg Config) *Router {
	def := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = def.Epsilon
	}
	if len(cfg.Priority) == 0 {
		cfg.Priority = def.Priority
	}
	if cfg.Default == "" {
		cfg.Default = def.Default
	}
	return &Router{cfg: cfg}
}

// Threshold returns the configured confidence threshold.
func (r *Router) Threshold() float64 {
	return r.cfg.Threshold
}

// Route selects the target category for one query. The window is a
// read-only snapshot used for the continuity fallback; Route never
// mutates it.
//
// Policy, in order:
//  1. composite, when a structural market signal and analysis intent
//     both clear the threshold;
//  2. the highest-scoring category above threshold, ties within epsilon
//     broken by the fixed priority order;
//  3. the most recent interaction's category (continuity);
//  4. the default category.
func (r *Router) Route(scores Scores, window []models.Interaction) models.Decision {
	conf := scores.Confidence

	if r.cfg.EnableComposite &&
		scores.Structural[models.CategoryMarket] > 0 &&
		conf[models.CategoryMarket] >= r.cfg.Threshold &&
		conf[models.CategoryAnalysis] >= r.cfg.Threshold {
		score := conf[models.CategoryMarket]
		if conf[models.CategoryAnalysis] > score {
			score = conf[models.CategoryAnalysis]
		}
		return models.Decision{
			Category: models.CategoryComposite,
			Score:    score,
			Reason:   "market identifier with analysis intent, dispatching both",
		}
	}

	// Find the maximum score among categories above threshold, then take
	// the first priority-ordered category within epsilon of it. Tied
	// scores can never be selected by map iteration order.
	maxScore := 0.0
	cleared := false
	for _, cat := range r.cfg.Priority {
		if score, ok := conf[cat]; ok && score >= r.cfg.Threshold {
			cleared = true
			if score > maxScore {
				maxScore = score
			}
		}
	}
	if cleared {
		for _, cat := range r.cfg.Priority {
			score, ok := conf[cat]
			if !ok || score < r.cfg.Threshold || score < maxScore-r.cfg.Epsilon {
				continue
			}
			return models.Decision{
				Category: cat,
				Score:    score,
				Reason:   fmt.Sprintf("confidence %.2f cleared threshold %.2f", score, r.cfg.Threshold),
			}
		}
	}

	// Nothing cleared the threshold: stay with the previous agent so
	// short ambiguous follow-ups keep their context.
	if len(window) > 0 {
		last := window[len(window)-1].AgentType.Continuity()
		for _, cat := range r.cfg.Priority {
			if cat == last {
				return models.Decision{
					Category: last,
					Score:    conf[last],
					Fallback: true,
					Reason:   "no category cleared threshold, continuing with previous agent",
				}
			}
		}
	}

	return models.Decision{
		Category: r.cfg.Default,
		Score:    conf[r.cfg.Default],
		Fallback: true,
		Reason:   "no category cleared threshold and no usable context, using default",
	}
}
