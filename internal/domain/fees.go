package domain

import (
	"fmt"
	"math"
	"strings"
)

// FeeStructure es la fila de fees de una plataforma.
type FeeStructure struct {
	Platform             Platform
	SellerFeePct         float64
	FixedFee             float64
	PaymentProcessingPct float64
	ShippingEstimate     float64
}

// FeeTable agrupa las filas base y los overrides por categoría.
type FeeTable struct {
	Schedules     map[Platform]FeeStructure
	CategoryRates map[Platform]map[string]float64
}

// FeeBreakdown es el resumen público de fees de una venta, redondeado a céntimos.
type FeeBreakdown struct {
	Platform     Platform
	Category     string  // categoría normalizada ("" si no aplica)
	RatePct      float64 // % efectivo usado para SellerFee
	SellerFee    float64
	FixedFee     float64
	PaymentFee   float64
	TotalFees    float64
	NetAfterFees float64
}

// ProfitInput son los datos de un par compra/venta.
// SellShipping sin cotizar cae al ShippingEstimate de la plataforma de venta.
type ProfitInput struct {
	SellPlatform Platform
	SellPrice    float64
	BuyPlatform  Platform
	BuyPrice     float64
	BuyShipping  float64
	SellShipping Shipping
	Category     string // opcional: usa la tarifa por categoría si existe
}

// ProfitCalculation contiene el desglose completo. Los campos mantienen
// precisión completa; el redondeo se hace al construir la oportunidad.
type ProfitCalculation struct {
	SellPrice    float64
	BuyPrice     float64
	BuyShipping  float64
	PlatformFees float64 // SellPrice*rate/100 + FixedFee
	PaymentFees  float64
	ShippingCost float64
	TotalCost    float64
	GrossProfit  float64 // SellPrice - BuyPrice - BuyShipping
	NetProfit    float64 // SellPrice - TotalCost
	MarginPct    float64 // NetProfit / SellPrice * 100
	ROI          float64 // NetProfit / (BuyPrice + BuyShipping) * 100
}

// FeeModel calcula fees y beneficio a partir de una FeeTable inmutable.
// Es seguro para uso concurrente.
type FeeModel struct {
	schedules     map[Platform]FeeStructure
	categoryRates map[Platform]map[string]float64
}

// NewFeeModel copia la tabla dada; los cambios posteriores en el original no afectan al modelo.
func NewFeeModel(table FeeTable) *FeeModel {
	m := &FeeModel{
		schedules:     make(map[Platform]FeeStructure, len(table.Schedules)),
		categoryRates: make(map[Platform]map[string]float64, len(table.CategoryRates)),
	}
	for p, fs := range table.Schedules {
		fs.Platform = p
		m.schedules[p] = fs
	}
	for p, rates := range table.CategoryRates {
		cp := make(map[string]float64, len(rates))
		for cat, pct := range rates {
			cp[NormalizeCategory(cat)] = pct
		}
		m.categoryRates[p] = cp
	}
	return m
}

// GetFeeSchedule devuelve la fila de fees de la plataforma.
// Si no existe devuelve un *ConfigError que envuelve ErrMissingFeeSchedule.
func (m *FeeModel) GetFeeSchedule(p Platform) (FeeStructure, error) {
	fs, ok := m.schedules[p]
	if !ok {
		return FeeStructure{}, &ConfigError{Platform: p, Err: ErrMissingFeeSchedule}
	}
	return fs, nil
}

// HasSchedule devuelve true si la plataforma tiene fila de fees.
func (m *FeeModel) HasSchedule(p Platform) bool {
	_, ok := m.schedules[p]
	return ok
}

// CalculateFees calcula las fees de vender a price en la plataforma dada.
// Si la categoría no tiene tarifa propia usa SellerFeePct.
//
//	sellerFee    = price × rate / 100
//	paymentFee   = price × PaymentProcessingPct / 100
//	totalFees    = sellerFee + fixedFee + paymentFee
//	netAfterFees = price - totalFees
func (m *FeeModel) CalculateFees(p Platform, price float64, category string) (FeeBreakdown, error) {
	fs, err := m.GetFeeSchedule(p)
	if err != nil {
		return FeeBreakdown{}, fmt.Errorf("domain.CalculateFees: %w", err)
	}

	cat := NormalizeCategory(category)
	rate := m.sellerRate(fs, cat)

	sellerFee := price * rate / 100
	paymentFee := price * fs.PaymentProcessingPct / 100
	total := sellerFee + fs.FixedFee + paymentFee

	return FeeBreakdown{
		Platform:     p,
		Category:     cat,
		RatePct:      rate,
		SellerFee:    Round2(sellerFee),
		FixedFee:     Round2(fs.FixedFee),
		PaymentFee:   Round2(paymentFee),
		TotalFees:    Round2(total),
		NetAfterFees: Round2(price - total),
	}, nil
}

// CalculateProfit evalúa un par compra/venta.
//
// ShippingCost es el SellShipping cotizado cuando existe, incluido 0; solo si
// no hay cotización se usa el ShippingEstimate de la plataforma de venta.
// MarginPct es 0 si SellPrice es 0. ROI es 0 si el coste de compra es 0.
func (m *FeeModel) CalculateProfit(in ProfitInput) (ProfitCalculation, error) {
	fs, err := m.GetFeeSchedule(in.SellPlatform)
	if err != nil {
		return ProfitCalculation{}, fmt.Errorf("domain.CalculateProfit: %w", err)
	}

	rate := m.sellerRate(fs, NormalizeCategory(in.Category))

	platformFees := in.SellPrice*rate/100 + fs.FixedFee
	paymentFees := in.SellPrice * fs.PaymentProcessingPct / 100
	shippingCost := in.SellShipping.Or(fs.ShippingEstimate)

	buyCost := in.BuyPrice + in.BuyShipping
	totalCost := buyCost + platformFees + paymentFees + shippingCost
	netProfit := in.SellPrice - totalCost

	calc := ProfitCalculation{
		SellPrice:    in.SellPrice,
		BuyPrice:     in.BuyPrice,
		BuyShipping:  in.BuyShipping,
		PlatformFees: platformFees,
		PaymentFees:  paymentFees,
		ShippingCost: shippingCost,
		TotalCost:    totalCost,
		GrossProfit:  in.SellPrice - in.BuyPrice - in.BuyShipping,
		NetProfit:    netProfit,
	}
	if in.SellPrice > 0 {
		calc.MarginPct = netProfit / in.SellPrice * 100
	}
	if totalCost > 0 && buyCost > 0 {
		calc.ROI = netProfit / buyCost * 100
	}
	return calc, nil
}

// sellerRate devuelve la tarifa por categoría si existe, o la base.
func (m *FeeModel) sellerRate(fs FeeStructure, normalizedCategory string) float64 {
	if normalizedCategory == "" {
		return fs.SellerFeePct
	}
	if rate, ok := m.categoryRates[fs.Platform][normalizedCategory]; ok {
		return rate
	}
	return fs.SellerFeePct
}

// NormalizeCategory pasa a minúsculas y elimina todo lo que no sea [a-z_].
// "Video Games" → "videogames"; "video_games" se mantiene.
func NormalizeCategory(category string) string {
	lower := strings.ToLower(category)
	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == '_' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Round2 redondea a 2 decimales, mitades lejos de cero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
