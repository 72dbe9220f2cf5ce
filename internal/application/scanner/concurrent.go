package scanner

// concurrent.go: evaluación paralela de anuncios con un pool acotado.
//
// Todos los workers comparten el mismo evaluador (inmutable) del ciclo.
// Los resultados se escriben por índice, así el orden de entrada se conserva
// antes del ranking.

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"golang.org/x/sync/errgroup"
)

// evaluateConcurrent evalúa todos los anuncios en paralelo.
// Los anuncios que fallan (sin precio) se loguean en debug y se omiten.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func evaluateConcurrent(
	ctx context.Context,
	ev DealEvaluator,
	listings []domain.Listing,
	workers int,
) ([]domain.Deal, error) {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	results := make([]*domain.Deal, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range listings {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			deal, err := ev.Evaluate(l, nil)
			if err != nil {
				slog.Debug("evaluate failed", "listing", l.ID, "platform", l.Platform, "err", err)
				return nil
			}
			results[i] = &deal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deals := make([]domain.Deal, 0, len(listings))
	for _, d := range results {
		if d != nil {
			deals = append(deals, *d)
		}
	}

	slog.Debug("concurrent evaluation complete",
		"listings", len(listings),
		"deals", len(deals),
		"workers", workers,
	)
	return deals, nil
}
