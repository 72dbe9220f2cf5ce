package ports

import (
	"context"

	"github.com/alejandrodnm/flipscore/internal/domain"
)

// ListingProvider obtiene anuncios ya estructurados del subsistema de adquisición.
type ListingProvider interface {
	// FetchListings devuelve los anuncios disponibles en este momento.
	// Los anuncios sin ID, URL ni título se descartan en el adapter.
	FetchListings(ctx context.Context) ([]domain.Listing, error)
}
