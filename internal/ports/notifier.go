package ports

import (
	"context"

	"github.com/alejandrodnm/flipscore/internal/domain"
)

// Notifier presenta los deals encontrados al usuario.
type Notifier interface {
	// Notify muestra los deals ordenados por deal score.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, deals []domain.Deal) error
}
