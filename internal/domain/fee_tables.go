package domain

// Tabla autoritativa de fees por plataforma.
//
//	SellerFeePct         → % sobre el precio de venta (comisión/referral)
//	FixedFee             → importe fijo por venta
//	PaymentProcessingPct → % de procesado de pago (0 si va incluido en la comisión)
//	ShippingEstimate     → envío estimado cuando no hay cotización real
//
// Craigslist tiene todo a 0 de forma explícita (venta local, sin comisión).
func defaultSchedules() map[Platform]FeeStructure {
	return map[Platform]FeeStructure{
		PlatformAmazon:              {Platform: PlatformAmazon, SellerFeePct: 15, FixedFee: 0.99, PaymentProcessingPct: 0, ShippingEstimate: 4.99},
		PlatformEBay:                {Platform: PlatformEBay, SellerFeePct: 12.9, FixedFee: 0.30, PaymentProcessingPct: 0, ShippingEstimate: 5.99},
		PlatformWalmart:             {Platform: PlatformWalmart, SellerFeePct: 15, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 5.99},
		PlatformTarget:              {Platform: PlatformTarget, SellerFeePct: 15, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 5.99},
		PlatformBestBuy:             {Platform: PlatformBestBuy, SellerFeePct: 15, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 5.99},
		PlatformEtsy:                {Platform: PlatformEtsy, SellerFeePct: 6.5, FixedFee: 0.45, PaymentProcessingPct: 3, ShippingEstimate: 4.99},
		PlatformMercari:             {Platform: PlatformMercari, SellerFeePct: 10, FixedFee: 0.50, PaymentProcessingPct: 2.9, ShippingEstimate: 6.99},
		PlatformPoshmark:            {Platform: PlatformPoshmark, SellerFeePct: 20, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 8.27},
		PlatformFacebookMarketplace: {Platform: PlatformFacebookMarketplace, SellerFeePct: 5, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 7.99},
		PlatformOfferUp:             {Platform: PlatformOfferUp, SellerFeePct: 12.9, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 5.99},
		PlatformStockX:              {Platform: PlatformStockX, SellerFeePct: 9, FixedFee: 0, PaymentProcessingPct: 3, ShippingEstimate: 5.00},
		PlatformGOAT:                {Platform: PlatformGOAT, SellerFeePct: 9.5, FixedFee: 5, PaymentProcessingPct: 2.9, ShippingEstimate: 0},
		PlatformAliExpress:          {Platform: PlatformAliExpress, SellerFeePct: 8, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 3.99},
		PlatformTCGPlayer:           {Platform: PlatformTCGPlayer, SellerFeePct: 10.75, FixedFee: 0.30, PaymentProcessingPct: 2.5, ShippingEstimate: 1.31},
		PlatformCraigslist:          {Platform: PlatformCraigslist, SellerFeePct: 0, FixedFee: 0, PaymentProcessingPct: 0, ShippingEstimate: 0},
	}
}

// defaultCategoryRates sustituye SellerFeePct por categoría.
// Las claves ya están normalizadas (ver NormalizeCategory).
func defaultCategoryRates() map[Platform]map[string]float64 {
	return map[Platform]map[string]float64{
		PlatformAmazon: {
			"electronics": 8,
			"computers":   8,
			"camera":      8,
			"video_games": 15,
			"toys":        15,
			"books":       15,
			"clothing":    17,
			"shoes":       15,
			"jewelry":     20,
			"beauty":      8,
			"home":        15,
			"kitchen":     15,
			"sports":      15,
			"grocery":     8,
			"automotive":  12,
			"tools":       15,
		},
		PlatformEBay: {
			"electronics":         12.9,
			"computers":           12.9,
			"books":               14.95,
			"movies":              14.95,
			"music":               14.95,
			"trading_cards":       13.25,
			"collectibles":        13.25,
			"clothing":            15,
			"jewelry":             15,
			"shoes":               8,
			"musical_instruments": 6.7,
		},
		PlatformWalmart: {
			"electronics": 8,
			"computers":   6,
			"video_games": 15,
			"clothing":    15,
			"jewelry":     20,
			"books":       15,
			"toys":        15,
			"grocery":     8,
		},
		PlatformTarget: {
			"electronics": 8,
			"toys":        15,
			"home":        15,
		},
		PlatformBestBuy: {
			"electronics": 8,
			"computers":   8,
			"video_games": 10,
		},
		PlatformTCGPlayer: {
			"trading_cards": 10.75,
			"sealed":        10.75,
			"supplies":      12,
		},
	}
}

// DefaultFeeTable devuelve una copia nueva de la tabla por defecto.
// Cubre todas las plataformas de AllPlatforms.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		Schedules:     defaultSchedules(),
		CategoryRates: defaultCategoryRates(),
	}
}
