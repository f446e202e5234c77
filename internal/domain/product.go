package domain

// ProductSearchResult es un listing tal como lo devuelve un adapter.
// Es efímero: el core no lo persiste ni lo modifica.
type ProductSearchResult struct {
	PlatformID  string // id nativo de la fuente
	Platform    Platform
	Title       string
	Price       float64
	Shipping    float64
	Currency    string
	InStock     bool
	Seller      string
	URL         string
	ImageURL    string
	UPC         string
	ASIN        string
	Brand       string
	Category    string
	Rating      float64
	ReviewCount int
	MSRP        float64
}

// TotalCost devuelve precio + envío, lo que paga un comprador.
func (r ProductSearchResult) TotalCost() float64 {
	return r.Price + r.Shipping
}

// SearchQuery son los parámetros que se pasan a PlatformAdapter.Search.
// Los campos en cero se consideran no especificados.
type SearchQuery struct {
	Query      string
	Category   string
	MinPrice   float64
	MaxPrice   float64
	MaxResults int
}

// StockStatus es la respuesta de CheckStock.
type StockStatus struct {
	InStock  bool
	Quantity *int // nil si la fuente no informa cantidad
}
