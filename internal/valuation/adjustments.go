package valuation

// adjustments.go: catálogo fijo de ajustes multiplicativos.
//
// Orden (no reordenar: cada ajuste recibe como base el valor que deja el anterior):
//   1. mining-risk   → sobre el AdjustedValue de la GPU, ANTES del subtotal
//   2. age           → subtotal
//   3. condition     → subtotal
//   4. completeness  → subtotal
//   5. demand        → subtotal
//
// Mining-risk queda registrado en el resultado con ScopeComponent y NO entra en la
// cadena del subtotal: ya está incluido en el valor de la GPU.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	miningRiskFactor = 0.85

	completeSystemFactor   = 1.10
	nearCompleteFactor     = 1.05 // core + RAM + storage + (PSU o caja)
	nearCompleteBareFactor = 1.00 // core + RAM + storage
	incompleteCoreFactor   = 0.95 // core presente pero falta RAM o storage
	partsValueFactor       = 0.90 // sin core: valor de piezas

	currentGenGPUFactor = 1.08
	currentGenCPUFactor = 1.05
	ddr5Factor          = 1.03

	ageFloor = 0.30
)

// overallConditionFactors mapea el score 1-5 del anuncio.
var overallConditionFactors = map[int]float64{5: 1.00, 4: 0.90, 3: 0.75, 2: 0.60, 1: 0.40}

// miningSeries cubre las GPUs RTX 30 (60/70/80/90) que no estén en la jerarquía.
var miningSeries = regexp.MustCompile(`RTX30[6-9]0`)

// AdjustmentContext es el contexto de solo lectura que reciben los ajustes.
type AdjustmentContext struct {
	Listing domain.Listing
	Store   *pricing.Store
}

// AdjustmentFunc es un ajuste puro: (valor, contexto) → Adjustment.
type AdjustmentFunc func(value decimal.Decimal, ctx AdjustmentContext) domain.Adjustment

// subtotalChain es la cadena aplicada sobre el subtotal, en orden.
var subtotalChain = []AdjustmentFunc{
	AgeAdjustment,
	ConditionAdjustment,
	CompletenessAdjustment,
	DemandAdjustment,
}

// MiningRisk devuelve el haircut para GPUs de series populares para minería.
// Se aplica solo al valor de la GPU.
func MiningRisk(model string, store *pricing.Store) domain.Adjustment {
	mining := miningSeries.MatchString(pricing.Normalize(model))
	if g, ok := store.GPU(model); ok {
		mining = g.Mining
	}
	adj := domain.NewAdjustment(domain.AdjustmentMiningRisk, domain.ScopeComponent, miningRiskFactor, mining,
		"GPU from a mining-popular series: expected excess wear")
	if !mining {
		adj.Reason = "GPU not in a mining-popular series"
	}
	adj.Target = domain.ComponentGPU
	return adj
}

// AgeDepreciation aplica la curva de depreciación por edad en meses.
//
//	age ≤ 12:  1 − 0.20·(age/12)
//	age > 12:  0.80 − 0.10·((age−12)/12), con suelo 0.30
func AgeDepreciation(months int) domain.Adjustment {
	if months <= 0 {
		return domain.NewAdjustment(domain.AdjustmentAge, domain.ScopeSubtotal, 1, false, "age unknown")
	}
	age := float64(months)
	var factor float64
	if age <= 12 {
		factor = 1 - 0.20*(age/12)
	} else {
		factor = 0.80 - 0.10*((age-12)/12)
	}
	if factor < ageFloor {
		factor = ageFloor
	}
	return domain.NewAdjustment(domain.AdjustmentAge, domain.ScopeSubtotal, factor, true,
		fmt.Sprintf("estimated age %d months", months))
}

// OverallCondition aplica la tabla del score 1-5.
func OverallCondition(score int) domain.Adjustment {
	factor, ok := overallConditionFactors[score]
	if !ok {
		return domain.NewAdjustment(domain.AdjustmentCondition, domain.ScopeSubtotal, 1, false, "no overall condition score")
	}
	return domain.NewAdjustment(domain.AdjustmentCondition, domain.ScopeSubtotal, factor, true,
		fmt.Sprintf("overall condition %d/5", score))
}

// Completeness clasifica el anuncio según qué piezas trae.
func Completeness(c domain.Components) domain.Adjustment {
	hasRAM := c.Has(domain.ComponentRAM)
	hasStorage := c.Has(domain.ComponentStorage)
	hasPSU := c.Has(domain.ComponentPSU)
	hasCase := c.Has(domain.ComponentCase)

	var factor float64
	var reason string
	switch {
	case c.HasCore() && hasRAM && hasStorage && hasPSU && hasCase:
		factor, reason = completeSystemFactor, "complete system premium"
	case c.HasCore() && hasRAM && hasStorage && (hasPSU || hasCase):
		factor, reason = nearCompleteFactor, "near-complete system"
	case c.HasCore() && hasRAM && hasStorage:
		factor, reason = nearCompleteBareFactor, "near-complete system"
	case c.HasCore():
		factor, reason = incompleteCoreFactor, "incomplete system"
	default:
		factor, reason = partsValueFactor, "incomplete system: parts value"
	}
	return domain.NewAdjustment(domain.AdjustmentCompleteness, domain.ScopeSubtotal, factor, true, reason)
}

// Demand compone las señales de alta demanda presentes en el anuncio.
func Demand(c domain.Components, store *pricing.Store) domain.Adjustment {
	factor := 1.0
	var signals []string

	if c.GPU != nil {
		if tier, ok := store.Lookup(domain.ComponentGPU, c.GPU.LookupKey(domain.ComponentGPU)); ok && tier.CurrentGen {
			factor *= currentGenGPUFactor
			signals = append(signals, "current-gen GPU "+tier.Model)
		}
	}
	if c.CPU != nil {
		if tier, ok := store.Lookup(domain.ComponentCPU, c.CPU.LookupKey(domain.ComponentCPU)); ok && tier.CurrentGen {
			factor *= currentGenCPUFactor
			signals = append(signals, "current-gen CPU "+tier.Model)
		}
	}
	if c.HasDDR5() {
		factor *= ddr5Factor
		signals = append(signals, "DDR5 memory")
	}

	if len(signals) == 0 {
		return domain.NewAdjustment(domain.AdjustmentDemand, domain.ScopeSubtotal, 1, false, "no high-demand signals")
	}
	return domain.NewAdjustment(domain.AdjustmentDemand, domain.ScopeSubtotal, factor, true,
		"high demand: "+strings.Join(signals, ", "))
}

// --- adaptadores a AdjustmentFunc ---

// AgeAdjustment adapta AgeDepreciation a la cadena.
func AgeAdjustment(_ decimal.Decimal, ctx AdjustmentContext) domain.Adjustment {
	return AgeDepreciation(ctx.Listing.Condition.AgeMonths)
}

// ConditionAdjustment adapta OverallCondition a la cadena.
func ConditionAdjustment(_ decimal.Decimal, ctx AdjustmentContext) domain.Adjustment {
	return OverallCondition(ctx.Listing.Condition.Overall)
}

// CompletenessAdjustment adapta Completeness a la cadena.
func CompletenessAdjustment(_ decimal.Decimal, ctx AdjustmentContext) domain.Adjustment {
	return Completeness(ctx.Listing.Components)
}

// DemandAdjustment adapta Demand a la cadena.
func DemandAdjustment(_ decimal.Decimal, ctx AdjustmentContext) domain.Adjustment {
	return Demand(ctx.Listing.Components, ctx.Store)
}

// applyChain aplica la cadena sobre value y devuelve el total y los ajustes emitidos.
// El total es value × Π(factores aplicados), redondeado a céntimos una sola vez.
func applyChain(value decimal.Decimal, ctx AdjustmentContext, chain []AdjustmentFunc) (decimal.Decimal, []domain.Adjustment) {
	product := 1.0
	adjustments := make([]domain.Adjustment, 0, len(chain))
	for _, fn := range chain {
		adj := fn(domain.Scale(value, product), ctx)
		if adj.Type == domain.AdjustmentMiningRisk {
			continue // ya aplicado sobre la GPU
		}
		adjustments = append(adjustments, adj)
		if adj.Applied {
			product *= adj.Factor
		}
	}
	return domain.Scale(value, product), adjustments
}
