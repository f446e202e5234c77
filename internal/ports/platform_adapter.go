package ports

import (
	"context"

	"github.com/alejandrodnm/arbscout/internal/domain"
)

// PlatformAdapter es el contrato que implementa cada fuente (API o scraper).
// Todas las llamadas pueden fallar; el llamador decide cómo degradar.
type PlatformAdapter interface {
	// Platform devuelve la plataforma que sirve el adapter.
	Platform() domain.Platform

	// Search devuelve los listings que coinciden con la búsqueda.
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.ProductSearchResult, error)

	// GetProduct devuelve un listing por id nativo, o nil si no existe.
	GetProduct(ctx context.Context, id string) (*domain.ProductSearchResult, error)

	// CheckStock consulta disponibilidad de un listing.
	CheckStock(ctx context.Context, id string) (domain.StockStatus, error)
}
