package router

import (
	"reflect"
	"testing"

	"github.com/tokensage/tokensage/pkg/models"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultRegistrations())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func lastInteraction(category models.Category) []models.Interaction {
	return []models.Interaction{{
		Query:     "previous",
		Response:  models.NewResult(category, "ok", nil),
		AgentType: category,
	}}
}

func windowOf(categories ...models.Category) []models.Interaction {
	window := make([]models.Interaction, 0, len(categories))
	for _, category := range categories {
		window = append(window, models.Interaction{
			Query:     "previous",
			Response:  models.NewResult(category, "ok", nil),
			AgentType: category,
		})
	}
	return window
}

func TestScoreEmptyQuery(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []string{"", "   ", "\t\n"}
	for _, query := range tests {
		t.Run("blank", func(t *testing.T) {
			scores := scorer.Score(query, nil)
			for cat, score := range scores.Confidence {
				if score != 0 {
					t.Errorf("Score(%q) gave %s = %v, want 0", query, cat, score)
				}
			}
		})
	}
}

func TestScoreMarketKeywords(t *testing.T) {
	scorer := newTestScorer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"price query", "what is the eth price today"},
		{"liquidity query", "show me the liquidity and volume for this pair"},
		{"chart query", "pull up the btc chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := scorer.Score(tt.query, nil)
			market := scores.Confidence[models.CategoryMarket]
			analysis := scores.Confidence[models.CategoryAnalysis]
			if market <= analysis {
				t.Errorf("market = %.2f, analysis = %.2f, want market higher", market, analysis)
			}
		})
	}
}

func TestScoreAddressDominatesWithoutKeywords(t *testing.T) {
	scorer := newTestScorer(t)

	// No market keywords at all, only an address-shaped token.
	query := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	scores := scorer.Score(query, nil)

	if scores.Confidence[models.CategoryMarket] < addressConfidence {
		t.Errorf("market confidence = %.2f, want >= %.2f", scores.Confidence[models.CategoryMarket], addressConfidence)
	}
	if scores.Structural[models.CategoryMarket] != addressConfidence {
		t.Errorf("market structural = %.2f, want %.2f", scores.Structural[models.CategoryMarket], addressConfidence)
	}
	if scores.Confidence[models.CategoryMarket] <= scores.Confidence[models.CategoryAnalysis] {
		t.Error("structural market signal should beat the analysis baseline")
	}
}

func TestScorePriceOfETHScenario(t *testing.T) {
	scorer := newTestScorer(t)

	query := "What's the price of ETH at 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	scores := scorer.Score(query, nil)

	if scores.Confidence[models.CategoryMarket] < scores.Confidence[models.CategoryAnalysis] {
		t.Errorf("market = %.2f below analysis = %.2f",
			scores.Confidence[models.CategoryMarket], scores.Confidence[models.CategoryAnalysis])
	}
}

func TestScoreMonotonicInMatches(t *testing.T) {
	scorer := newTestScorer(t)

	one := scorer.Score("price check", nil).Confidence[models.CategoryMarket]
	two := scorer.Score("price and volume check", nil).Confidence[models.CategoryMarket]
	three := scorer.Score("price volume and liquidity check", nil).Confidence[models.CategoryMarket]

	if !(one < two && two < three) {
		t.Errorf("scores %v, %v, %v should rise with distinct matches", one, two, three)
	}
}

func TestScoreContinuityBonus(t *testing.T) {
	scorer := newTestScorer(t)
	query := "and the volume?"

	without := scorer.Score(query, nil).Confidence[models.CategoryMarket]
	with := scorer.Score(query, lastInteraction(models.CategoryMarket)).Confidence[models.CategoryMarket]

	if with-without < continuityBonus-1e-9 {
		t.Errorf("continuity bonus missing: %.2f -> %.2f", without, with)
	}
}

func TestScoreCompositeContinuityResolvesToAnalysis(t *testing.T) {
	scorer := newTestScorer(t)
	query := "tell me more"

	scores := scorer.Score(query, lastInteraction(models.CategoryComposite))
	base := scorer.Score(query, nil)

	gained := scores.Confidence[models.CategoryAnalysis] - base.Confidence[models.CategoryAnalysis]
	if gained < continuityBonus-1e-9 {
		t.Errorf("composite continuity should favor analysis, gained %.2f", gained)
	}
	if scores.Confidence[models.CategoryMarket] != base.Confidence[models.CategoryMarket] {
		t.Error("composite continuity should not favor market")
	}
}

func TestScoreRecencyBoost(t *testing.T) {
	scorer := newTestScorer(t)
	query := "and now?"

	tests := []struct {
		name    string
		window  []models.Interaction
		boosted bool
	}{
		{
			name:    "two of last three",
			window:  windowOf(models.CategoryMarket, models.CategoryMarket, models.CategoryAnalysis),
			boosted: true,
		},
		{
			name:    "streak ends the window",
			window:  windowOf(models.CategoryAnalysis, models.CategoryMarket, models.CategoryMarket),
			boosted: true,
		},
		{
			name:    "one of last three",
			window:  windowOf(models.CategoryMarket, models.CategoryAnalysis, models.CategoryAnalysis),
			boosted: false,
		},
		{
			name: "streak outside the recency window",
			window: windowOf(models.CategoryMarket, models.CategoryMarket,
				models.CategoryAnalysis, models.CategoryAnalysis, models.CategoryAnalysis),
			boosted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := scorer.Score(query, tt.window).Confidence[models.CategoryMarket]
			if tt.boosted && market < recencyScore {
				t.Errorf("market = %.2f, want >= %.2f from recency", market, recencyScore)
			}
			if !tt.boosted && market >= recencyScore {
				t.Errorf("market = %.2f, recency should not apply", market)
			}
		})
	}
}

func TestScoreRecencyCountsCompositeAsAnalysis(t *testing.T) {
	scorer := newTestScorer(t)

	// Two composite interactions resolve to analysis for recency, same
	// as they do for continuity.
	window := windowOf(models.CategoryComposite, models.CategoryComposite, models.CategoryMarket)
	scores := scorer.Score("and now?", window)

	if analysis := scores.Confidence[models.CategoryAnalysis]; analysis < recencyScore {
		t.Errorf("analysis = %.2f, want >= %.2f from composite recency", analysis, recencyScore)
	}
	if market := scores.Confidence[models.CategoryMarket]; market >= recencyScore {
		t.Errorf("market = %.2f, single market interaction should not trigger recency", market)
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer := newTestScorer(t)
	query := "why did the eth price drop after the 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 listing?"
	window := lastInteraction(models.CategoryMarket)

	first := scorer.Score(query, window)
	for i := 0; i < 5; i++ {
		if got := scorer.Score(query, window); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different scores", i)
		}
	}
}

func TestScoreUnusualEncoding(t *testing.T) {
	scorer := newTestScorer(t)

	// Must not panic and must stay in range on arbitrary bytes.
	queries := []string{"\xff\xfe", "🚀🚀🚀 до луны", "ᚠᚢᚦ price ᚱᚲ"}
	for _, q := range queries {
		scores := scorer.Score(q, nil)
		for cat, score := range scores.Confidence {
			if score < 0 || score > 1 {
				t.Errorf("Score(%q) %s = %v out of range", q, cat, score)
			}
		}
	}
}

func TestNewScorerRejectsDuplicates(t *testing.T) {
	_, err := NewScorer([]Registration{
		{Category: models.CategoryMarket},
		{Category: models.CategoryMarket},
	})
	if err == nil {
		t.Fatal("expected error for duplicate category")
	}
}

func TestNewScorerRejectsEmptyCategory(t *testing.T) {
	if _, err := NewScorer([]Registration{{Category: ""}}); err == nil {
		t.Fatal("expected error for empty category")
	}
	if _, err := NewScorer(nil); err == nil {
		t.Fatal("expected error for no registrations")
	}
}

func TestNewScorerAcceptsNewCategory(t *testing.T) {
	// A new category plugs in with just a keyword set; nothing in the
	// scorer needs to change.
	regs := append(DefaultRegistrations(), Registration{
		Category: models.Category("news"),
		Keywords: []string{"headline", "announcement"},
	})
	scorer, err := NewScorer(regs)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	scores := scorer.Score("any big announcement today?", nil)
	if scores.Confidence[models.Category("news")] == 0 {
		t.Error("new category keywords should score")
	}
}
