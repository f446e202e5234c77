package httpsearch

import "encoding/json"

// DTOs raw de la API de búsqueda. Solo se usan dentro de este paquete.
// La conversión a domain se hace en mapping.go.

// searchResponse es la respuesta de GET /search.
type searchResponse struct {
	Results []listing `json:"results"`
	Total   int       `json:"total"`
}

// listing es un producto tal como lo devuelve la API. Los importes pueden
// venir como número o como string ("19.99").
type listing struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Shipping    json.Number `json:"shipping"`
	Currency    string      `json:"currency"`
	InStock     *bool       `json:"in_stock"`
	Seller      string      `json:"seller"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url"`
	UPC         string      `json:"upc"`
	ASIN        string      `json:"asin"`
	Brand       string      `json:"brand"`
	Category    string      `json:"category"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	MSRP        json.Number `json:"msrp"`
}

// stockResponse es la respuesta de GET /products/{id}/stock.
type stockResponse struct {
	InStock  bool `json:"in_stock"`
	Quantity *int `json:"quantity"`
}
