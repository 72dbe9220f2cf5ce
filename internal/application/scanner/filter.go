package scanner

import (
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/shopspring/decimal"
)

// FilterConfig contiene los parámetros configurables de filtrado.
// Un umbral a cero desactiva su criterio.
type FilterConfig struct {
	// MinDealScore descarta deals con score compuesto por debajo (0-100).
	MinDealScore float64
	// MinNetProfit descarta deals cuyo beneficio neto estimado es menor.
	MinNetProfit decimal.Decimal
	// MaxRisk descarta anuncios con risk score (0-10) por encima.
	MaxRisk float64
	// MaxDistance descarta anuncios más lejos de X millas.
	MaxDistance float64
}

// DefaultFilterConfig devuelve una configuración de filtrado conservadora.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinDealScore: 30,
		MinNetProfit: domain.Dollars(50),
		MaxRisk:      7,
		MaxDistance:  60,
	}
}

// Filter aplica los filtros configurados sobre una lista de deals.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los deals que pasan todos los filtros.
func (f *Filter) Apply(deals []domain.Deal) []domain.Deal {
	result := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if f.passes(d) {
			result = append(result, d)
		}
	}
	return result
}

// passes devuelve true si el deal supera todos los criterios.
func (f *Filter) passes(d domain.Deal) bool {
	if f.cfg.MinDealScore > 0 && d.ROI.DealScore < f.cfg.MinDealScore {
		return false
	}
	if f.cfg.MinNetProfit.IsPositive() && d.ROI.NetProfit.LessThan(f.cfg.MinNetProfit) {
		return false
	}
	if f.cfg.MaxRisk > 0 && d.Listing.Risk.Score > f.cfg.MaxRisk {
		return false
	}
	if f.cfg.MaxDistance > 0 && d.Listing.Location.DistanceMiles > f.cfg.MaxDistance {
		return false
	}
	return true
}
