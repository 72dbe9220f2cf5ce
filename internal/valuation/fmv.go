package valuation

import (
	"fmt"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	defaultConfidence   = 0.5  // ninguna pieza valorada
	coveragePenalty     = 0.05 // por slot primario ausente
	priceRangeMaxMargin = 0.20

	limitedDataThreshold = 4
	underpricedRatio     = 1.5
	overpricedRatio      = 0.7
)

// Calculator es el FMV Aggregator: valora piezas, aplica la cadena y deriva
// confianza, rango e insights. No tiene estado por llamada: se puede compartir.
type Calculator struct {
	store  *pricing.Store
	valuer *Valuer
	chain  []AdjustmentFunc
}

// NewCalculator crea un Calculator sobre el store dado.
func NewCalculator(store *pricing.Store) *Calculator {
	return &Calculator{
		store:  store,
		valuer: NewValuer(store),
		chain:  subtotalChain,
	}
}

// ResolveCondition determina el nivel de condición global del anuncio.
// El enum explícito gana; si no, el score 1-5; si no, good.
func ResolveCondition(c domain.Condition) domain.ConditionTier {
	if tier, ok := domain.ParseConditionTier(string(c.Tier)); ok {
		return tier
	}
	if tier, ok := domain.TierFromOverall(c.Overall); ok {
		return tier
	}
	return domain.ConditionGood
}

// Calculate valora el anuncio completo. Nunca falla: los datos ausentes
// reducen la confianza en lugar de producir un error.
func (c *Calculator) Calculate(listing domain.Listing) domain.FMVResult {
	overall := ResolveCondition(listing.Condition)
	breakdown, adjustments := c.valueComponents(listing.Components, overall)

	subtotal := decimal.Zero
	for _, v := range breakdown {
		subtotal = subtotal.Add(v.AdjustedValue)
	}

	ctx := AdjustmentContext{Listing: listing, Store: c.store}
	total, chainAdj := applyChain(subtotal, ctx, c.chain)
	adjustments = append(adjustments, chainAdj...)

	confidence := aggregateConfidence(breakdown, listing.Components)

	return domain.FMVResult{
		Total:              total,
		Subtotal:           subtotal,
		ComponentBreakdown: breakdown,
		Confidence:         confidence,
		Adjustments:        adjustments,
		PriceRange:         priceRange(total, confidence),
		Insights:           insights(listing, total, breakdown, adjustments),
	}
}

// valueComponents valora cada pieza presente en orden fijo. La GPU sale ya
// con mining-risk aplicado; el ajuste se devuelve aparte para el resultado.
func (c *Calculator) valueComponents(comps domain.Components, overall domain.ConditionTier) ([]domain.ComponentValue, []domain.Adjustment) {
	var (
		out  []domain.ComponentValue
		adjs []domain.Adjustment
	)

	value := func(t domain.ComponentType, spec domain.ComponentSpec) domain.ComponentValue {
		return c.valuer.Value(t, spec, componentCondition(spec, overall))
	}

	if comps.CPU != nil {
		out = append(out, value(domain.ComponentCPU, *comps.CPU))
	}
	if comps.GPU != nil {
		gpu := value(domain.ComponentGPU, *comps.GPU)
		if mining := MiningRisk(comps.GPU.LookupKey(domain.ComponentGPU), c.store); mining.Applied {
			gpu = gpu.WithAdjustment(mining)
			adjs = append(adjs, mining)
		}
		out = append(out, gpu)
	}
	for _, m := range comps.RAM {
		out = append(out, value(domain.ComponentRAM, m))
	}
	for _, d := range comps.Storage {
		out = append(out, value(domain.ComponentStorage, d))
	}
	for _, p := range []struct {
		t    domain.ComponentType
		spec *domain.ComponentSpec
	}{
		{domain.ComponentMotherboard, comps.Motherboard},
		{domain.ComponentPSU, comps.PSU},
		{domain.ComponentCase, comps.Case},
		{domain.ComponentCooling, comps.Cooling},
	} {
		if p.spec != nil {
			out = append(out, value(p.t, *p.spec))
		}
	}
	return out, adjs
}

// componentCondition aplica el override de la pieza si es válido.
func componentCondition(spec domain.ComponentSpec, overall domain.ConditionTier) domain.ConditionTier {
	if tier, ok := domain.ParseConditionTier(string(spec.Condition)); ok {
		return tier
	}
	return overall
}

// aggregateConfidence = media de confianzas × cobertura de slots primarios.
func aggregateConfidence(breakdown []domain.ComponentValue, comps domain.Components) float64 {
	if len(breakdown) == 0 {
		return domain.ClampConfidence(defaultConfidence)
	}
	sum := 0.0
	for _, v := range breakdown {
		sum += v.Confidence
	}
	mean := sum / float64(len(breakdown))
	coverage := 1 - coveragePenalty*float64(comps.MissingPrimary())
	return domain.ClampConfidence(mean * coverage)
}

// priceRange abre un margen de ±(1−conf)·20% alrededor del total.
func priceRange(total decimal.Decimal, confidence float64) domain.PriceRange {
	margin := domain.Scale(total.Abs(), (1-confidence)*priceRangeMaxMargin)
	return domain.PriceRange{Min: total.Sub(margin), Max: total.Add(margin)}
}

func insights(listing domain.Listing, total decimal.Decimal, breakdown []domain.ComponentValue, adjs []domain.Adjustment) []string {
	var out []string

	if len(breakdown) < limitedDataThreshold {
		out = append(out, fmt.Sprintf("limited data: only %d components valued", len(breakdown)))
	}

	if asking := listing.AskingPrice(); listing.HasPrice() && asking.IsPositive() {
		switch {
		case total.GreaterThan(domain.Scale(asking, underpricedRatio)):
			out = append(out, fmt.Sprintf("underpriced: FMV $%s vs asking $%s", total.StringFixed(2), asking.StringFixed(2)))
		case total.LessThan(domain.Scale(asking, overpricedRatio)):
			out = append(out, fmt.Sprintf("overpriced or incomplete info: FMV $%s vs asking $%s", total.StringFixed(2), asking.StringFixed(2)))
		}
	}

	for _, a := range adjs {
		if a.Type == domain.AdjustmentMiningRisk && a.Applied {
			out = append(out, "mining-popular GPU: inspect for wear and ask about usage history")
		}
	}
	return out
}
