// Package engine compone el pipeline de evaluación de un anuncio:
// FMV → ROI → competition → offer strategy, y devuelve un domain.Deal.
//
// Un Evaluator es inmutable: se construye con un snapshot de settings y se
// puede compartir entre goroutines. Cambiar settings = construir otro Evaluator.
package engine

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/flipscore/internal/competition"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/offer"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/alejandrodnm/flipscore/internal/roi"
	"github.com/alejandrodnm/flipscore/internal/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dealNamespace hace que el ID de un deal dependa solo del anuncio.
var dealNamespace = uuid.MustParse("5b0c7a4e-3f7d-4a8e-9c55-0f6e2b1d9a10")

// Evaluator evalúa anuncios con un snapshot fijo de settings y tablas.
type Evaluator struct {
	store  *pricing.Store
	fmv    *valuation.Calculator
	roi    *roi.Calculator
	offers *offer.Generator
	now    func() time.Time
}

// New crea un Evaluator.
func New(settings domain.Settings, store *pricing.Store) *Evaluator {
	return &Evaluator{
		store:  store,
		fmv:    valuation.NewCalculator(store),
		roi:    roi.NewCalculator(settings, store),
		offers: offer.NewGenerator(store),
		now:    time.Now,
	}
}

// WithClock devuelve una copia que usa now para EvaluatedAt y la estacionalidad.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	cp := *e
	cp.now = now
	cp.roi = e.roi.WithClock(now)
	return &cp
}

// Settings devuelve el snapshot con el que se construyó el Evaluator.
func (e *Evaluator) Settings() domain.Settings {
	return e.roi.Settings()
}

// Evaluate ejecuta el pipeline completo. negotiated es opcional.
// El único error posible es roi.ErrNoPrice (envuelto).
func (e *Evaluator) Evaluate(listing domain.Listing, negotiated *decimal.Decimal) (domain.Deal, error) {
	fmv := e.fmv.Calculate(listing)

	r, err := e.roi.Calculate(listing, fmv, negotiated)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("engine.Evaluate: %w", err)
	}

	comp := competition.Score(listing)
	strategy := e.offers.Generate(listing, fmv, r, &comp)

	return domain.Deal{
		ID:          DealID(listing),
		Listing:     listing,
		FMV:         fmv,
		ROI:         r,
		Competition: comp,
		Offer:       strategy,
		EvaluatedAt: e.now(),
	}, nil
}

// Enrich aplica las capas opcionales (estacional con el mes del reloj,
// regional, marca y comparables) sobre el FMV de un deal ya evaluado.
func (e *Evaluator) Enrich(deal domain.Deal, comparables []decimal.Decimal) domain.EnrichmentResult {
	return valuation.EnrichFMV(deal.FMV, deal.Listing, e.now().Month(), comparables)
}

// DealID deriva un UUID estable del anuncio: plataforma + ID, o la URL si no hay ID.
func DealID(listing domain.Listing) string {
	key := listing.ID
	if key == "" {
		key = listing.URL
	}
	if key == "" {
		key = listing.Title
	}
	return uuid.NewSHA1(dealNamespace, []byte(listing.Platform+":"+key)).String()
}
