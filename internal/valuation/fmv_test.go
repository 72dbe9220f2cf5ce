package valuation

import (
	"testing"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gamingRig es el anuncio de referencia: sistema completo con RTX 3080.
func gamingRig() domain.Listing {
	return domain.Listing{
		ID:    "rig-1",
		Title: "Gaming PC i7-12700K RTX 3080 32GB",
		Price: decimal.NewNullDecimal(domain.Dollars(800)),
		Components: domain.Components{
			CPU:         &domain.ComponentSpec{Model: "i7-12700K"},
			GPU:         &domain.ComponentSpec{Model: "RTX 3080"},
			RAM:         []domain.ComponentSpec{{CapacityGB: 32, Kind: "DDR4", SpeedMHz: 3600}},
			Storage:     []domain.ComponentSpec{{CapacityGB: 1000, Kind: "NVMe"}},
			Motherboard: &domain.ComponentSpec{Model: "Z690"},
			PSU:         &domain.ComponentSpec{Wattage: 750, Kind: "Gold"},
			Case:        &domain.ComponentSpec{Model: "generic"},
		},
		Condition: domain.Condition{Tier: domain.ConditionGood, AgeMonths: 18},
		Risk:      domain.Risk{Score: 3},
	}
}

func TestCalculate_CompleteSystemScenario(t *testing.T) {
	fmv := NewCalculator(pricing.Default()).Calculate(gamingRig())

	assert.True(t, fmv.Total.GreaterThanOrEqual(domain.Dollars(950)), "total %s", fmv.Total)
	assert.True(t, fmv.Total.LessThanOrEqual(domain.Dollars(1150)), "total %s", fmv.Total)
	assert.Equal(t, "1222.80", fmv.Subtotal.StringFixed(2))

	completeness, ok := fmv.Adjustment(domain.AdjustmentCompleteness)
	require.True(t, ok)
	assert.InDelta(t, 1.10, completeness.Factor, 1e-9)
	assert.Equal(t, "complete system premium", completeness.Reason)
	assert.True(t, fmv.IsCompleteBuild())

	assert.GreaterOrEqual(t, fmv.Confidence, 0.85)
	assert.LessOrEqual(t, fmv.Confidence, domain.MaxConfidence)
	assert.Len(t, fmv.ComponentBreakdown, 7)
}

func TestCalculate_CPUAndGPUOnlyIsIncomplete(t *testing.T) {
	calc := NewCalculator(pricing.Default())
	full := calc.Calculate(gamingRig())

	partial := gamingRig()
	partial.Components = domain.Components{
		CPU: partial.Components.CPU,
		GPU: partial.Components.GPU,
	}
	fmv := calc.Calculate(partial)

	completeness, ok := fmv.Adjustment(domain.AdjustmentCompleteness)
	require.True(t, ok)
	assert.GreaterOrEqual(t, completeness.Factor, 0.90)
	assert.LessOrEqual(t, completeness.Factor, 0.95)
	assert.Less(t, fmv.Confidence, full.Confidence)
	assert.False(t, fmv.IsCompleteBuild())
	assert.Contains(t, fmv.Insights[0], "limited data")
}

func TestCalculate_MiningRiskAppliedOnce(t *testing.T) {
	fmv := NewCalculator(pricing.Default()).Calculate(gamingRig())

	gpu, ok := fmv.Component(domain.ComponentGPU)
	require.True(t, ok)
	assert.Equal(t, domain.Scale(gpu.BaseValue, 0.85).String(), gpu.AdjustedValue.String())
	require.Len(t, gpu.Adjustments, 1)
	assert.Equal(t, domain.AdjustmentMiningRisk, gpu.Adjustments[0].Type)

	mining := 0
	for _, a := range fmv.Adjustments {
		if a.Type == domain.AdjustmentMiningRisk {
			mining++
			assert.Equal(t, domain.ScopeComponent, a.Scope)
		}
	}
	assert.Equal(t, 1, mining)

	for _, a := range fmv.SubtotalAdjustments() {
		assert.NotEqual(t, domain.AdjustmentMiningRisk, a.Type)
		assert.NotEqual(t, domain.ComponentGPU, a.Target)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	calc := NewCalculator(pricing.Default())
	l := gamingRig()
	assert.Equal(t, calc.Calculate(l), calc.Calculate(l))
}

func TestCalculate_ConfidenceAndRangeInvariants(t *testing.T) {
	calc := NewCalculator(pricing.Default())

	cases := map[string]domain.Listing{
		"empty":        {},
		"zero price":   {Price: decimal.NewNullDecimal(decimal.Zero), Components: domain.Components{CPU: &domain.ComponentSpec{}}},
		"unknown gpu":  {Components: domain.Components{GPU: &domain.ComponentSpec{Model: "Matrox G200"}}},
		"poor and old": {Components: gamingRig().Components, Condition: domain.Condition{Overall: 1, AgeMonths: 240}},
		"complete":     gamingRig(),
	}
	for name, l := range cases {
		t.Run(name, func(t *testing.T) {
			fmv := calc.Calculate(l)
			assert.GreaterOrEqual(t, fmv.Confidence, 0.0)
			assert.LessOrEqual(t, fmv.Confidence, domain.MaxConfidence)
			assert.True(t, fmv.PriceRange.Contains(fmv.Total), "%s not in [%s, %s]", fmv.Total, fmv.PriceRange.Min, fmv.PriceRange.Max)
		})
	}
}

func TestCalculate_EmptyListingDefaults(t *testing.T) {
	fmv := NewCalculator(pricing.Default()).Calculate(domain.Listing{})
	assert.True(t, fmv.Total.IsZero())
	assert.Equal(t, defaultConfidence, fmv.Confidence)
	assert.Empty(t, fmv.ComponentBreakdown)
}

func TestCalculate_PriceInsights(t *testing.T) {
	calc := NewCalculator(pricing.Default())

	cheap := gamingRig()
	cheap.Price = decimal.NewNullDecimal(domain.Dollars(400))
	assert.Contains(t, calc.Calculate(cheap).Insights, "mining-popular GPU: inspect for wear and ask about usage history")
	assert.True(t, containsPrefix(calc.Calculate(cheap).Insights, "underpriced"))

	pricey := gamingRig()
	pricey.Price = decimal.NewNullDecimal(domain.Dollars(2000))
	assert.True(t, containsPrefix(calc.Calculate(pricey).Insights, "overpriced or incomplete info"))

	fair := gamingRig()
	insights := calc.Calculate(fair).Insights
	assert.False(t, containsPrefix(insights, "underpriced"))
	assert.False(t, containsPrefix(insights, "overpriced"))
}

func TestResolveCondition(t *testing.T) {
	assert.Equal(t, domain.ConditionExcellent, ResolveCondition(domain.Condition{Tier: "like_new", Overall: 1}))
	assert.Equal(t, domain.ConditionPoor, ResolveCondition(domain.Condition{Tier: "for parts"}))
	assert.Equal(t, domain.ConditionExcellent, ResolveCondition(domain.Condition{Overall: 4}))
	assert.Equal(t, domain.ConditionGood, ResolveCondition(domain.Condition{Tier: "???"}))
	assert.Equal(t, domain.ConditionGood, ResolveCondition(domain.Condition{}))
}

func TestCalculate_ComponentOverrideCondition(t *testing.T) {
	l := gamingRig()
	l.Components.CPU = &domain.ComponentSpec{Model: "i7-12700K", Condition: domain.ConditionNew}
	fmv := NewCalculator(pricing.Default()).Calculate(l)

	cpu, ok := fmv.Component(domain.ComponentCPU)
	require.True(t, ok)
	assert.Equal(t, domain.ConditionNew, cpu.Condition)
	assert.Equal(t, "320.00", cpu.BaseValue.StringFixed(2))
}

func containsPrefix(xs []string, prefix string) bool {
	for _, x := range xs {
		if len(x) >= len(prefix) && x[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
