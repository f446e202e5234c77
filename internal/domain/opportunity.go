package domain

import "time"

// ArbitrageOpportunity es un par compra/venta rentable entre dos plataformas.
// Solo se crea si NetProfit > 0 y MarginPct ≥ el mínimo del scan.
// Los importes están redondeados a céntimos.
type ArbitrageOpportunity struct {
	ProductID    string // PlatformID del listing de compra
	ProductTitle string

	BuyPlatform Platform
	BuyPrice    float64
	BuyShipping float64
	BuyURL      string

	SellPlatform Platform
	SellPrice    float64
	SellShipping float64
	SellURL      string

	EstimatedFees   float64 // PlatformFees + PaymentFees + ShippingCost
	EstimatedProfit float64 // NetProfit
	MarginPct       float64
	ROI             float64
	Score           float64 // [0,1], lo rellena Scorer.Rank

	MatchType MatchType // vacío si el par no salió del matcher
	ScannedAt time.Time
}

// NewOpportunity construye la oportunidad a partir de los dos listings y el cálculo.
func NewOpportunity(buy, sell ProductSearchResult, calc ProfitCalculation, scannedAt time.Time) ArbitrageOpportunity {
	return ArbitrageOpportunity{
		ProductID:       buy.PlatformID,
		ProductTitle:    buy.Title,
		BuyPlatform:     buy.Platform,
		BuyPrice:        Round2(buy.Price),
		BuyShipping:     Round2(buy.Shipping),
		BuyURL:          buy.URL,
		SellPlatform:    sell.Platform,
		SellPrice:       Round2(sell.Price),
		SellShipping:    Round2(sell.Shipping),
		SellURL:         sell.URL,
		EstimatedFees:   Round2(calc.PlatformFees + calc.PaymentFees + calc.ShippingCost),
		EstimatedProfit: Round2(calc.NetProfit),
		MarginPct:       Round2(calc.MarginPct),
		ROI:             Round2(calc.ROI),
		ScannedAt:       scannedAt,
	}
}

// Route devuelve "buy→sell" para logs y tablas.
func (o ArbitrageOpportunity) Route() string {
	return string(o.BuyPlatform) + "→" + string(o.SellPlatform)
}

// TruncateTitle devuelve el título truncado a maxLen caracteres.
// Si está vacío usa el ProductID como fallback.
func TruncateTitle(title, productID string, maxLen int) string {
	t := title
	if t == "" {
		t = productID
	}
	r := []rune(t)
	if len(r) > maxLen && maxLen > 3 {
		t = string(r[:maxLen-3]) + "..."
	}
	return t
}
