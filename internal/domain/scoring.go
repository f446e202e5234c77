package domain

import (
	"math"
	"sort"
)

// Normalización del score: a partir de estos valores el componente satura en 1.
const (
	marginSaturationPct = 50.0
	profitSaturationUSD = 50.0
	defaultReliability  = 0.5
)

// Weights pondera los tres componentes del score.
type Weights struct {
	Margin      float64
	Profit      float64
	Reliability float64
}

// DefaultWeights devuelve 0.4 / 0.35 / 0.25.
func DefaultWeights() Weights {
	return Weights{Margin: 0.4, Profit: 0.35, Reliability: 0.25}
}

// DefaultReliability devuelve la fiabilidad estimada por plataforma en [0,1].
// Mide la probabilidad de que la venta se complete sin disputas ni cancelaciones.
func DefaultReliability() map[Platform]float64 {
	return map[Platform]float64{
		PlatformAmazon:              0.95,
		PlatformEBay:                0.85,
		PlatformWalmart:             0.90,
		PlatformTarget:              0.90,
		PlatformBestBuy:             0.90,
		PlatformEtsy:                0.80,
		PlatformMercari:             0.70,
		PlatformPoshmark:            0.70,
		PlatformFacebookMarketplace: 0.55,
		PlatformOfferUp:             0.55,
		PlatformStockX:              0.85,
		PlatformGOAT:                0.85,
		PlatformAliExpress:          0.60,
		PlatformTCGPlayer:           0.80,
		PlatformCraigslist:          0.40,
	}
}

// ScorerConfig configura el Scorer. Weights en cero usa DefaultWeights;
// Reliability nil usa DefaultReliability.
type ScorerConfig struct {
	Weights     Weights
	Reliability map[Platform]float64
}

// Scorer combina margen, beneficio y fiabilidad en un score en [0,1].
// Es inmutable tras la construcción.
type Scorer struct {
	weights     Weights
	reliability map[Platform]float64
}

// NewScorer crea un Scorer con copia propia de la tabla de fiabilidad.
func NewScorer(cfg ScorerConfig) *Scorer {
	w := cfg.Weights
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	src := cfg.Reliability
	if src == nil {
		src = DefaultReliability()
	}
	rel := make(map[Platform]float64, len(src))
	for p, v := range src {
		rel[p] = clamp01(v)
	}
	return &Scorer{weights: w, reliability: rel}
}

// Reliability devuelve la fiabilidad de la plataforma, 0.5 si no está configurada.
func (s *Scorer) Reliability(p Platform) float64 {
	if v, ok := s.reliability[p]; ok {
		return v
	}
	return defaultReliability
}

// Score calcula:
//
//	marginScore      = min(MarginPct/50, 1)
//	profitScore      = min(EstimatedProfit/50, 1)
//	reliabilityScore = (rel[buy] + rel[sell]) / 2
//	score            = Σ componente × peso, redondeado a 2 decimales
//
// Los componentes negativos cuentan como 0 y el resultado se acota a [0,1].
func (s *Scorer) Score(opp ArbitrageOpportunity) float64 {
	marginScore := clamp01(opp.MarginPct / marginSaturationPct)
	profitScore := clamp01(opp.EstimatedProfit / profitSaturationUSD)
	reliabilityScore := (s.Reliability(opp.BuyPlatform) + s.Reliability(opp.SellPlatform)) / 2

	score := marginScore*s.weights.Margin +
		profitScore*s.weights.Profit +
		reliabilityScore*s.weights.Reliability
	return Round2(clamp01(score))
}

// Rank devuelve una copia con Score rellenado, ordenada por score descendente.
// El orden es estable: los empates conservan el orden de entrada.
func (s *Scorer) Rank(opps []ArbitrageOpportunity) []ArbitrageOpportunity {
	ranked := make([]ArbitrageOpportunity, len(opps))
	for i, o := range opps {
		o.Score = s.Score(o)
		ranked[i] = o
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
