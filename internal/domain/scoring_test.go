package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOpp(buy, sell Platform, margin, profit float64) ArbitrageOpportunity {
	return ArbitrageOpportunity{
		ProductID:       string(buy) + "-" + string(sell),
		BuyPlatform:     buy,
		SellPlatform:    sell,
		MarginPct:       margin,
		EstimatedProfit: profit,
	}
}

// --- Score ---

func TestScore_Components(t *testing.T) {
	s := NewScorer(ScorerConfig{Reliability: map[Platform]float64{
		PlatformAmazon: 1.0, PlatformEBay: 0.6,
	}})
	// margin 25/50 = 0.5 × 0.4  = 0.20
	// profit 20/50 = 0.4 × 0.35 = 0.14
	// rel (1.0 + 0.6)/2 = 0.8 × 0.25 = 0.20
	// total = 0.54
	score := s.Score(makeOpp(PlatformAmazon, PlatformEBay, 25, 20))
	assert.InDelta(t, 0.54, score, 1e-9)
}

func TestScore_Saturates(t *testing.T) {
	s := NewScorer(ScorerConfig{Reliability: map[Platform]float64{
		PlatformAmazon: 1, PlatformEBay: 1,
	}})
	assert.Equal(t, 1.0, s.Score(makeOpp(PlatformAmazon, PlatformEBay, 500, 5000)))
}

func TestScore_UnconfiguredPlatformUsesDefault(t *testing.T) {
	s := NewScorer(ScorerConfig{Reliability: map[Platform]float64{}})
	assert.Equal(t, 0.5, s.Reliability(PlatformGOAT))
	// solo fiabilidad: 0.5 × 0.25 = 0.125 → 0.13
	assert.Equal(t, 0.13, s.Score(makeOpp(PlatformGOAT, PlatformStockX, 0, 0)))
}

func TestScore_AlwaysInUnitInterval(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	for _, margin := range []float64{-100, -1, 0, 10, 49.99, 50, 1000} {
		for _, profit := range []float64{-50, 0, 1, 49, 50, 1e6} {
			score := s.Score(makeOpp(PlatformMercari, PlatformPoshmark, margin, profit))
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestScore_MonotonicInMarginAndProfit(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	prev := -1.0
	for margin := 0.0; margin <= 80; margin += 2.5 {
		score := s.Score(makeOpp(PlatformWalmart, PlatformEBay, margin, 20))
		assert.GreaterOrEqual(t, score, prev, "margin %.1f", margin)
		prev = score
	}

	prev = -1.0
	for profit := 0.0; profit <= 80; profit += 2.5 {
		score := s.Score(makeOpp(PlatformWalmart, PlatformEBay, 20, profit))
		assert.GreaterOrEqual(t, score, prev, "profit %.1f", profit)
		prev = score
	}
}

func TestNewScorer_CopiesReliability(t *testing.T) {
	rel := map[Platform]float64{PlatformEtsy: 0.9}
	s := NewScorer(ScorerConfig{Reliability: rel})
	rel[PlatformEtsy] = 0.1
	assert.Equal(t, 0.9, s.Reliability(PlatformEtsy))
}

// --- Rank ---

func TestRank_DescendingScores(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	opps := []ArbitrageOpportunity{
		makeOpp(PlatformAmazon, PlatformEBay, 10, 5),
		makeOpp(PlatformAmazon, PlatformEBay, 40, 45),
	}

	ranked := s.Rank(opps)

	require.Len(t, ranked, 2)
	for i := 0; i+1 < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i].Score, ranked[i+1].Score)
	}
	assert.Equal(t, 40.0, ranked[0].MarginPct)
	// la entrada no se modifica
	assert.Equal(t, 0.0, opps[0].Score)
}

func TestRank_StableOnTies(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	opps := make([]ArbitrageOpportunity, 0, 6)
	for _, id := range []string{"first", "second", "third", "fourth", "fifth", "sixth"} {
		o := makeOpp(PlatformTarget, PlatformEBay, 20, 10)
		o.ProductID = id
		opps = append(opps, o)
	}

	ranked := s.Rank(opps)
	for i, o := range ranked {
		assert.Equal(t, opps[i].ProductID, o.ProductID)
	}
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, NewScorer(ScorerConfig{}).Rank(nil))
}
