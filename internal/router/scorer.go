package router

import (
	"fmt"
	"strings"

	"github.com/tokensage/tokensage/pkg/models"
)

// Scoring constants. Keyword confidence starts at firstMatchScore for a
// single distinct match and rises by perMatchScore for each additional
// one, capped at 1. The continuity bonus nudges the previous agent's
// category so clear follow-ups don't switch agents needlessly.
const (
	firstMatchScore = 0.65
	perMatchScore   = 0.2
	continuityBonus = 0.1
)

// Recency constants. A category that answered at least recencyMinCount
// of the last recencyWindow interactions is floored at recencyScore, so
// a keyword-free follow-up inside a streak stays with that agent
// instead of falling to the default.
const (
	recencyWindow   = 3
	recencyMinCount = 2
	recencyScore    = 0.7
)

// Scores holds the per-category confidence for one query, plus the raw
// structural signal that produced it. Computed fresh per query, never
// persisted.
type Scores struct {
	// Confidence maps each registered category to a score in [0,1].
	Confidence map[models.Category]float64
	// Structural maps each category to its detector signal, before
	// keyword and continuity contributions.
	Structural map[models.Category]float64
}

// Scorer computes per-category confidence from keywords, structural
// detectors, and bounded context contributions. It holds no mutable
// state: identical (query, window) inputs always produce identical
// scores.
type Scorer struct {
	regs []Registration
}

// NewScorer creates a Scorer from the given registrations. Categories
// must be non-empty and unique.
func NewScorer(regs []Registration) (*Scorer, error) {
	if len(regs) == 0 {
		return nil, fmt.Errorf("no categories registered")
	}
	seen := make(map[models.Category]bool, len(regs))
	for _, reg := range regs {
		if reg.Category == "" || reg.Category == models.CategoryNone {
			return nil, fmt.Errorf("registration with empty category")
		}
		if seen[reg.Category] {
			return nil, fmt.Errorf("duplicate category %q", reg.Category)
		}
		seen[reg.Category] = true
	}
	return &Scorer{regs: regs}, nil
}

// Categories returns the registered categories in priority order.
func (s *Scorer) Categories() []models.Category {
	cats := make([]models.Category, 0, len(s.regs))
	for _, reg := range s.regs {
		cats = append(cats, reg.Category)
	}
	return cats
}

// Score computes the confidence for every registered category.
// Empty or whitespace-only queries yield zero for every category.
func (s *Scorer) Score(query string, window []models.Interaction) Scores {
	scores := Scores{
		Confidence: make(map[models.Category]float64, len(s.regs)),
		Structural: make(map[models.Category]float64, len(s.regs)),
	}

	lower := strings.ToLower(query)
	words := strings.Fields(lower)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:'\"")] = true
	}

	var lastCategory models.Category
	if len(window) > 0 {
		lastCategory = window[len(window)-1].AgentType.Continuity()
	}

	recent := make(map[models.Category]int, recencyWindow)
	if start := len(window) - recencyWindow; start >= 0 {
		window = window[start:]
	}
	for _, interaction := range window {
		recent[interaction.AgentType.Continuity()]++
	}

	for _, reg := range s.regs {
		structural := 0.0
		if reg.Detector != nil {
			structural = clamp(reg.Detector(query))
		}
		scores.Structural[reg.Category] = structural

		if len(words) == 0 {
			scores.Confidence[reg.Category] = 0
			continue
		}

		confidence := reg.Baseline
		if kw := keywordScore(lower, wordSet, reg.Keywords); kw > confidence {
			confidence = kw
		}
		if structural > confidence {
			confidence = structural
		}
		if recent[reg.Category] >= recencyMinCount && recencyScore > confidence {
			confidence = recencyScore
		}
		if reg.Category == lastCategory {
			confidence += continuityBonus
		}
		scores.Confidence[reg.Category] = clamp(confidence)
	}

	return scores
}

// keywordScore rises monotonically with the number of distinct matched
// terms. Single-word terms match whole words; phrases match as
// substrings of the normalized query.
func keywordScore(lowerQuery string, wordSet map[string]bool, keywords []string) float64 {
	matches := 0
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lowerQuery, kw) {
				matches++
			}
		} else if wordSet[kw] {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	return clamp(firstMatchScore + perMatchScore*float64(matches-1))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
