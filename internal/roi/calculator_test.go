package roi

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/alejandrodnm/flipscore/internal/valuation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) }

func newCalc(s domain.Settings) *Calculator {
	return NewCalculator(s, pricing.Default()).WithClock(march)
}

func gamingRig() domain.Listing {
	return domain.Listing{
		ID:    "rig-1",
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
		Location:  domain.Location{DistanceMiles: 10, State: "TX"},
	}
}

func completeFMV(total float64) domain.FMVResult {
	return domain.FMVResult{
		Total:      domain.Dollars(total),
		Confidence: 0.9,
		Adjustments: []domain.Adjustment{
			domain.NewAdjustment(domain.AdjustmentCompleteness, domain.ScopeSubtotal, 1.10, true, "complete system premium"),
		},
	}
}

func TestCalculate_GamingRig(t *testing.T) {
	l := gamingRig()
	fmv := valuation.NewCalculator(pricing.Default()).Calculate(l)
	require.Equal(t, "1008.81", fmv.Total.StringFixed(2))

	r, err := newCalc(domain.DefaultSettings()).Calculate(l, fmv, nil)
	require.NoError(t, err)

	assert.Equal(t, "800.00", r.PurchasePrice.StringFixed(2))
	assert.Equal(t, "1000.00", r.ResalePrice.StringFixed(2))
	assert.Equal(t, 5, r.EstimatedDaysToSell)
	assert.Equal(t, "14.43", r.TransportCost.StringFixed(2))
	assert.Equal(t, "25.00", r.RefurbCost.StringFixed(2))
	assert.Equal(t, "50.00", r.ListingFees.StringFixed(2))
	assert.Equal(t, "64.00", r.Taxes.StringFixed(2))
	assert.Equal(t, "5.00", r.HoldingCost.StringFixed(2))
	assert.Equal(t, "908.43", r.TotalInvestment.StringFixed(2))
	assert.Equal(t, "200.00", r.GrossProfit.StringFixed(2))
	assert.Equal(t, "41.57", r.NetProfit.StringFixed(2))
	assert.InDelta(t, 4.157, r.ProfitMargin, 1e-3)
	assert.InDelta(t, 4.576, r.ROI, 1e-3)
	assert.Equal(t, "956.24", r.BreakEvenPrice.StringFixed(2))
	assert.Equal(t, "653.31", r.WalkAwayPrice.StringFixed(2))
	assert.Equal(t, "650.00", r.RecommendedOffer.StringFixed(2))
	assert.InDelta(t, r.ROI/5, r.DailyROI, 1e-9)
	assert.InDelta(t, 22.857, r.DealScore, 1e-2)
}

func TestCalculate_NoPrice(t *testing.T) {
	l := gamingRig()
	l.Price = decimal.NullDecimal{}

	_, err := newCalc(domain.DefaultSettings()).Calculate(l, completeFMV(1000), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPrice))

	negotiated := domain.Dollars(500)
	r, err := newCalc(domain.DefaultSettings()).Calculate(l, completeFMV(1000), &negotiated)
	require.NoError(t, err)
	assert.Equal(t, "500.00", r.PurchasePrice.StringFixed(2))
}

func TestCalculate_NegotiatedPriceWins(t *testing.T) {
	negotiated := domain.Dollars(650)
	r, err := newCalc(domain.DefaultSettings()).Calculate(gamingRig(), completeFMV(1000), &negotiated)
	require.NoError(t, err)
	assert.Equal(t, "650.00", r.PurchasePrice.StringFixed(2))
	assert.Equal(t, "52.00", r.Taxes.StringFixed(2))
}

func TestCalculate_ZeroDenominators(t *testing.T) {
	l := domain.Listing{Price: decimal.NewNullDecimal(decimal.Zero)}
	r, err := newCalc(domain.Settings{}).Calculate(l, domain.FMVResult{}, nil)
	require.NoError(t, err)

	for name, v := range map[string]float64{
		"roi": r.ROI, "margin": r.ProfitMargin, "daily": r.DailyROI, "risk adjusted": r.RiskAdjustedROI,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
		assert.Zero(t, v, name)
	}
	assert.GreaterOrEqual(t, r.DealScore, 0.0)
	assert.LessOrEqual(t, r.DealScore, 100.0)
}

func TestResalePrice_Rounding(t *testing.T) {
	calc := newCalc(domain.DefaultSettings())
	tests := []struct {
		fmv  float64
		want string
	}{
		{1234, "1250.00"},
		{1012.49, "1000.00"},
		{612, "600.00"},
		{513, "525.00"},
		{487, "490.00"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calc.ResalePrice(domain.Dollars(tt.fmv)).StringFixed(2), "fmv=%.2f", tt.fmv)
	}

	s := domain.DefaultSettings()
	s.Strategy = domain.StrategyConservative
	assert.Equal(t, "1050.00", newCalc(s).ResalePrice(domain.Dollars(1000)).StringFixed(2))
	s.Strategy = domain.StrategyAggressive
	assert.Equal(t, "950.00", newCalc(s).ResalePrice(domain.Dollars(1000)).StringFixed(2))
	s.Financial.MarkupPct = 0.10
	s.Strategy = domain.StrategyFair
	assert.Equal(t, "1100.00", newCalc(s).ResalePrice(domain.Dollars(1000)).StringFixed(2))
}

func TestTransportCost(t *testing.T) {
	calc := newCalc(domain.DefaultSettings())
	assert.True(t, calc.TransportCost(0).IsZero())
	// 70 millas → 10.50 gasolina + 2h × $20
	assert.Equal(t, "50.50", calc.TransportCost(35).StringFixed(2))

	s := domain.DefaultSettings()
	s.Geography.AvgSpeedMPH = 0
	assert.Equal(t, "50.50", newCalc(s).TransportCost(35).StringFixed(2))
}

func TestRefurbCost_AddOns(t *testing.T) {
	calc := newCalc(domain.DefaultSettings())

	worn := domain.Listing{
		Components: domain.Components{RAM: []domain.ComponentSpec{{CapacityGB: 8}}},
		Condition:  domain.Condition{AgeMonths: 30},
	}
	// limpieza 5 + pasta 8 + ssd 35 + ram 25 + 1h × 20
	assert.Equal(t, "93.00", calc.RefurbCost(worn).StringFixed(2))

	hot := gamingRig()
	hot.Condition.Issues = []string{"GPU Overheats under load"}
	assert.Equal(t, "33.00", calc.RefurbCost(hot).StringFixed(2))
}

func TestDaysToSell(t *testing.T) {
	hot := domain.Listing{Components: domain.Components{GPU: &domain.ComponentSpec{Model: "RTX 4090"}}}
	december := func() time.Time { return time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC) }
	calc := NewCalculator(domain.DefaultSettings(), pricing.Default()).WithClock(december)

	assert.Equal(t, 6, calc.DaysToSell(hot, domain.FMVResult{}, domain.Dollars(2000)))
	assert.Equal(t, minDaysToSell, calc.DaysToSell(hot, completeFMV(250), domain.Dollars(250)))

	july := func() time.Time { return time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC) }
	assert.Equal(t, 9, calc.WithClock(july).DaysToSell(domain.Listing{}, domain.FMVResult{}, domain.Dollars(1000)))
}

func TestRecommendedOffer_NeverExceedsWalkAway(t *testing.T) {
	strategies := []domain.PricingStrategy{domain.StrategyAggressive, domain.StrategyFair, domain.StrategyConservative}
	for _, strategy := range strategies {
		s := domain.DefaultSettings()
		s.Strategy = strategy
		calc := newCalc(s)
		for _, asking := range []float64{0, 50, 300, 799, 1500, 5000} {
			for _, total := range []float64{0, 120, 640, 1008.81, 3000} {
				for _, risk := range []float64{0, 6, 10} {
					l := gamingRig()
					l.Price = decimal.NewNullDecimal(domain.Dollars(asking))
					l.Risk.Score = risk
					r, err := calc.Calculate(l, completeFMV(total), nil)
					require.NoError(t, err)
					assert.True(t, r.RecommendedOffer.LessThanOrEqual(r.WalkAwayPrice),
						"%s asking=%.2f fmv=%.2f risk=%.0f: offer %s > walk %s", strategy, asking, total, risk, r.RecommendedOffer, r.WalkAwayPrice)
					assert.False(t, r.WalkAwayPrice.IsNegative())
					assert.GreaterOrEqual(t, r.DealScore, 0.0)
					assert.LessOrEqual(t, r.DealScore, 100.0)
				}
			}
		}
	}
}

func TestRecommendedOffer_RiskDiscountAndCheapAsking(t *testing.T) {
	calc := newCalc(domain.DefaultSettings())
	walk := domain.Dollars(10000)

	l := domain.Listing{Price: decimal.NewNullDecimal(domain.Dollars(1000))}
	assert.Equal(t, "700.00", calc.RecommendedOffer(l, domain.Dollars(1000), walk).StringFixed(2))

	l.Risk.Score = 6
	assert.Equal(t, "630.00", calc.RecommendedOffer(l, domain.Dollars(1000), walk).StringFixed(2))

	cheap := domain.Listing{Price: decimal.NewNullDecimal(domain.Dollars(600))}
	assert.Equal(t, "540.00", calc.RecommendedOffer(cheap, domain.Dollars(1000), walk).StringFixed(2))

	// el redondeo al alza no puede superar el walk-away
	plain := domain.Listing{Price: decimal.NewNullDecimal(domain.Dollars(1000))}
	assert.Equal(t, "650.00", calc.RecommendedOffer(plain, domain.Dollars(1000), domain.Dollars(659.99)).StringFixed(2))
}
