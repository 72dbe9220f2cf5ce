package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AdjustmentType identifica un ajuste del catálogo.
type AdjustmentType string

const (
	AdjustmentMiningRisk   AdjustmentType = "mining_risk"
	AdjustmentAge          AdjustmentType = "age_depreciation"
	AdjustmentCondition    AdjustmentType = "overall_condition"
	AdjustmentCompleteness AdjustmentType = "completeness"
	AdjustmentDemand       AdjustmentType = "demand"
	AdjustmentSeasonal     AdjustmentType = "seasonal"
	AdjustmentRegional     AdjustmentType = "regional"
	AdjustmentBrand        AdjustmentType = "brand"
	AdjustmentComparables  AdjustmentType = "comparables"
)

// AdjustmentScope indica sobre qué base se aplica el factor.
type AdjustmentScope string

const (
	// ScopeComponent: el factor ya está incluido en el AdjustedValue de una pieza.
	ScopeComponent AdjustmentScope = "component"
	// ScopeSubtotal: el factor se aplica sobre la suma de piezas.
	ScopeSubtotal AdjustmentScope = "subtotal"
)

// Adjustment es un factor multiplicativo con su explicación.
// Factor 1.0 = no-op. Nunca se persiste: se deriva en cada valoración.
type Adjustment struct {
	Type    AdjustmentType  `json:"type"`
	Scope   AdjustmentScope `json:"scope"`
	Target  ComponentType   `json:"target,omitempty"`
	Reason  string          `json:"reason"`
	Factor  float64         `json:"factor"`
	Impact  string          `json:"impact"`
	Applied bool            `json:"applied"`
}

// NewAdjustment construye un ajuste con el impacto formateado.
// applied=false fuerza el factor a 1.0.
func NewAdjustment(t AdjustmentType, scope AdjustmentScope, factor float64, applied bool, reason string) Adjustment {
	if !applied {
		factor = 1.0
	}
	return Adjustment{
		Type:    t,
		Scope:   scope,
		Reason:  reason,
		Factor:  factor,
		Impact:  FormatImpact(factor),
		Applied: applied,
	}
}

// FormatImpact formatea un factor como delta porcentual: 0.85 → "-15.0%".
func FormatImpact(factor float64) string {
	return fmt.Sprintf("%+.1f%%", (factor-1)*100)
}

// PriceRange es el intervalo de incertidumbre alrededor del FMV.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains devuelve true si v está dentro del rango (incluidos los extremos).
func (r PriceRange) Contains(v decimal.Decimal) bool {
	return r.Min.LessThanOrEqual(v) && v.LessThanOrEqual(r.Max)
}

// FMVResult es el resultado de una valoración. Se consume inmediatamente por el ROI.
type FMVResult struct {
	Total              decimal.Decimal  `json:"total"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	ComponentBreakdown []ComponentValue `json:"component_breakdown"`
	Confidence         float64          `json:"confidence"`
	Adjustments        []Adjustment     `json:"adjustments"`
	PriceRange         PriceRange       `json:"price_range"`
	Insights           []string         `json:"insights"`
}

// SubtotalAdjustments devuelve solo los ajustes de la cadena sobre el subtotal.
func (r FMVResult) SubtotalAdjustments() []Adjustment {
	var out []Adjustment
	for _, a := range r.Adjustments {
		if a.Scope == ScopeSubtotal {
			out = append(out, a)
		}
	}
	return out
}

// Adjustment devuelve el primer ajuste del tipo dado.
func (r FMVResult) Adjustment(t AdjustmentType) (Adjustment, bool) {
	for _, a := range r.Adjustments {
		if a.Type == t {
			return a, true
		}
	}
	return Adjustment{}, false
}

// Component devuelve la primera valoración del tipo dado.
func (r FMVResult) Component(t ComponentType) (ComponentValue, bool) {
	for _, v := range r.ComponentBreakdown {
		if v.Type == t {
			return v, true
		}
	}
	return ComponentValue{}, false
}

// IsCompleteBuild devuelve true si se aplicó la prima de sistema completo.
func (r FMVResult) IsCompleteBuild() bool {
	a, ok := r.Adjustment(AdjustmentCompleteness)
	return ok && a.Factor > 1.05
}

// LayerResult es el resultado auditable de una capa de enriquecimiento.
type LayerResult struct {
	Adjustment    Adjustment      `json:"adjustment"`
	AdjustedValue decimal.Decimal `json:"adjusted_value"`
	Delta         decimal.Decimal `json:"delta"`
}

// EnrichmentResult encadena las capas seasonal → regional → brand (→ comparables).
type EnrichmentResult struct {
	Input  decimal.Decimal `json:"input"`
	Layers []LayerResult   `json:"layers"`
	Final  decimal.Decimal `json:"final"`
}
