package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
)

// Storage persiste el histórico de deals de cada ciclo.
type Storage interface {
	// SaveCycle persiste el resumen del ciclo y los deals que pasaron el filtro.
	SaveCycle(ctx context.Context, summary domain.CycleSummary, deals []domain.Deal) error

	// GetHistory devuelve los deals vistos en el rango de tiempo dado, mejor score primero.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.DealRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
