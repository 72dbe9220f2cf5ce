package scanner

import (
	"github.com/alejandrodnm/flipscore/internal/application/settings"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/engine"
	"github.com/shopspring/decimal"
)

// DealEvaluator es el subconjunto de engine.Evaluator que usa el scanner.
type DealEvaluator interface {
	Evaluate(listing domain.Listing, negotiated *decimal.Decimal) (domain.Deal, error)
}

// Analyzer entrega, para cada ciclo, un evaluador construido sobre el snapshot
// activo del holder. Si el snapshot no cambió reutiliza el evaluador anterior.
type Analyzer struct {
	holder  *settings.Holder
	version uint64
	current DealEvaluator
	build   func(*settings.Snapshot) DealEvaluator
}

// NewAnalyzer crea un Analyzer que lee el snapshot de holder.
func NewAnalyzer(holder *settings.Holder) *Analyzer {
	return &Analyzer{
		holder: holder,
		build: func(s *settings.Snapshot) DealEvaluator {
			return engine.New(s.Settings, s.Pricing)
		},
	}
}

// Evaluator devuelve el evaluador del snapshot activo.
// Se llama una vez por ciclo desde el goroutine del scanner.
func (a *Analyzer) Evaluator() (DealEvaluator, *settings.Snapshot) {
	snap := a.holder.Load()
	if a.current == nil || snap.Version != a.version {
		a.current = a.build(snap)
		a.version = snap.Version
	}
	return a.current, snap
}
