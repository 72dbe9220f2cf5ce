package valuation

import (
	"fmt"
	"slices"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const (
	minComparables     = 3
	comparablesFullAt  = 20 // n a partir del cual el peso satura
	maxComparableBlend = 0.7
)

// ComparableStats resume los precios de venta observados.
type ComparableStats struct {
	Count  int
	Median decimal.Decimal
	Mean   decimal.Decimal
	StdDev decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

// Summarize calcula las estadísticas de los comparables. Ignora precios no positivos.
func Summarize(prices []decimal.Decimal) ComparableStats {
	xs := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p.IsPositive() {
			xs = append(xs, p.InexactFloat64())
		}
	}
	out := ComparableStats{Count: len(xs)}
	if len(xs) == 0 {
		return out
	}
	slices.Sort(xs)

	out.Median = domain.Dollars(stat.Quantile(0.5, stat.Empirical, xs, nil))
	out.Mean = domain.Dollars(stat.Mean(xs, nil))
	if len(xs) > 1 {
		out.StdDev = domain.Dollars(stat.StdDev(xs, nil))
	}
	out.Min = domain.Dollars(xs[0])
	out.Max = domain.Dollars(xs[len(xs)-1])
	return out
}

// BlendWeight devuelve el peso de los comparables en el blend: min(0.7, n/20).
// Con menos de 3 comparables no hay blend.
func BlendWeight(n int) float64 {
	if n < minComparables {
		return 0
	}
	return min(maxComparableBlend, float64(n)/comparablesFullAt)
}

// blendComparables mezcla el valor con la mediana de los comparables.
func blendComparables(value decimal.Decimal, prices []decimal.Decimal) (domain.LayerResult, bool) {
	stats := Summarize(prices)
	w := BlendWeight(stats.Count)
	if w == 0 {
		return domain.LayerResult{}, false
	}

	wd := decimal.NewFromFloat(w)
	blended := domain.RoundCents(value.Mul(decimal.NewFromInt(1).Sub(wd)).Add(stats.Median.Mul(wd)))

	factor := 1.0
	if value.IsPositive() {
		factor = domain.Ratio(blended, value)
	}
	adj := domain.NewAdjustment(domain.AdjustmentComparables, domain.ScopeSubtotal, factor, true,
		fmt.Sprintf("blended with %d comparable sales (median $%s, weight %.2f)", stats.Count, stats.Median.StringFixed(2), w))

	return domain.LayerResult{
		Adjustment:    adj,
		AdjustedValue: blended,
		Delta:         blended.Sub(value),
	}, true
}
