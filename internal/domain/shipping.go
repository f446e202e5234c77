package domain

// Shipping es un coste de envío que puede no haberse cotizado.
// El valor cero es "sin cotizar"; QuotedShipping(0) es envío gratis cotizado.
type Shipping struct {
	amount float64
	quoted bool
}

// QuotedShipping devuelve un envío cotizado explícitamente (0 incluido).
func QuotedShipping(amount float64) Shipping {
	return Shipping{amount: amount, quoted: true}
}

// UnquotedShipping devuelve un envío sin cotizar.
func UnquotedShipping() Shipping {
	return Shipping{}
}

// Value devuelve el importe y si fue cotizado.
func (s Shipping) Value() (float64, bool) {
	return s.amount, s.quoted
}

// Or devuelve el importe cotizado, o fallback si no hay cotización.
func (s Shipping) Or(fallback float64) float64 {
	if s.quoted {
		return s.amount
	}
	return fallback
}
