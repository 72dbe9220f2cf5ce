// Package roi modela el coste y el beneficio de comprar un anuncio y revenderlo:
// inversión total, beneficio neto, precio de walk-away (techo de negociación),
// oferta recomendada, días estimados de venta y deal score.
package roi

import (
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

// ErrNoPrice se devuelve cuando no hay ni precio pedido ni precio negociado.
var ErrNoPrice = errors.New("listing has no asking or negotiated price")

const (
	defaultAvgSpeedMPH = 35.0

	cheapOfferRatio = 0.8 // asking ≤ fmv·0.8 → ofertar cerca del asking
	cheapOfferPull  = 0.9
	riskyThreshold  = 5.0
	riskyDiscount   = 0.9
	offerStep       = 10

	baseDaysToSell = 7
	minDaysToSell  = 3
)

// resaleNudge: aggressive vende antes y más barato, conservative aguanta por más.
var resaleNudge = map[domain.PricingStrategy]float64{
	domain.StrategyAggressive:   0.95,
	domain.StrategyFair:         1.00,
	domain.StrategyConservative: 1.05,
}

// offerFactor es la fracción del FMV que se usa como oferta base.
var offerFactor = map[domain.PricingStrategy]float64{
	domain.StrategyAggressive:   0.65,
	domain.StrategyFair:         0.70,
	domain.StrategyConservative: 0.75,
}

// Calculator calcula ROIResult con un snapshot inmutable de settings.
type Calculator struct {
	settings domain.Settings
	store    *pricing.Store
	now      func() time.Time
}

// NewCalculator crea un Calculator. El store se usa para reconocer GPUs "hot".
func NewCalculator(settings domain.Settings, store *pricing.Store) *Calculator {
	return &Calculator{settings: settings, store: store, now: time.Now}
}

// WithClock devuelve una copia que usa now para la estacionalidad de días de venta.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	cp := *c
	cp.now = now
	return &cp
}

// Settings devuelve el snapshot de settings del calculador.
func (c *Calculator) Settings() domain.Settings {
	return c.settings
}

// Calculate modela la compra del anuncio al precio negociado (o al pedido si
// negotiated es nil) y su reventa al FMV.
func (c *Calculator) Calculate(listing domain.Listing, fmv domain.FMVResult, negotiated *decimal.Decimal) (domain.ROIResult, error) {
	var purchase decimal.Decimal
	switch {
	case negotiated != nil:
		purchase = domain.RoundCents(*negotiated)
	case listing.HasPrice():
		purchase = listing.AskingPrice()
	default:
		return domain.ROIResult{}, fmt.Errorf("roi.Calculate: listing %q: %w", listing.ID, ErrNoPrice)
	}

	fin := c.settings.Financial
	r := domain.ROIResult{PurchasePrice: purchase}

	r.ResalePrice = c.ResalePrice(fmv.Total)
	r.EstimatedDaysToSell = c.DaysToSell(listing, fmv, r.ResalePrice)

	r.TransportCost = c.TransportCost(listing.Location.DistanceMiles)
	r.RefurbCost = c.RefurbCost(listing)
	r.ListingFees = domain.Scale(r.ResalePrice, fin.MarketplaceFeePct)
	r.Taxes = domain.Scale(purchase, fin.TaxRate)
	r.HoldingCost = domain.RoundCents(fin.HoldingCostPerDay.Mul(decimal.NewFromInt(int64(r.EstimatedDaysToSell))))

	r.TotalInvestment = purchase.Add(r.Taxes).Add(r.TransportCost).Add(r.RefurbCost).Add(r.HoldingCost)
	r.GrossProfit = r.ResalePrice.Sub(purchase)
	r.NetProfit = r.ResalePrice.Sub(r.TotalInvestment).Sub(r.ListingFees)
	r.ProfitMargin = domain.Percent(r.NetProfit, r.ResalePrice)
	r.ROI = domain.Percent(r.NetProfit, r.TotalInvestment)

	if feeBase := 1 - fin.MarketplaceFeePct; feeBase > 0 {
		r.BreakEvenPrice = domain.RoundCents(r.TotalInvestment.Div(decimal.NewFromFloat(feeBase)))
	}

	r.WalkAwayPrice = c.WalkAwayPrice(r)
	r.RecommendedOffer = c.RecommendedOffer(listing, fmv.Total, r.WalkAwayPrice)

	if r.EstimatedDaysToSell > 0 {
		r.DailyROI = r.ROI / float64(r.EstimatedDaysToSell)
	}
	r.RiskAdjustedROI = domain.RiskAdjustedROI(r.ROI, listing.Risk.Score, fmv.Confidence)
	r.DealScore = domain.DealScore(domain.DealScoreInputs{
		ROI:          r.ROI,
		ProfitMargin: r.ProfitMargin,
		NetProfit:    r.NetProfit,
		RiskScore:    listing.Risk.Score,
		Confidence:   fmv.Confidence,
		DailyROI:     r.DailyROI,
	})
	return r, nil
}

// ResalePrice = fmv·(1+markup)·nudge, redondeado a $50 (>1000), $25 (>500) o $10.
func (c *Calculator) ResalePrice(fmv decimal.Decimal) decimal.Decimal {
	nudge, ok := resaleNudge[c.settings.Strategy]
	if !ok {
		nudge = 1
	}
	raw := domain.Scale(fmv, (1+c.settings.Financial.MarkupPct)*nudge)
	return domain.NonNegative(domain.RoundToNearest(raw, resaleStep(raw)))
}

func resaleStep(v decimal.Decimal) int64 {
	switch {
	case v.GreaterThan(decimal.NewFromInt(1000)):
		return 50
	case v.GreaterThan(decimal.NewFromInt(500)):
		return 25
	}
	return 10
}

// TransportCost = ida y vuelta × gasolina + horas de conducción × labor rate.
func (c *Calculator) TransportCost(distanceMiles float64) decimal.Decimal {
	if distanceMiles <= 0 {
		return decimal.Zero
	}
	geo := c.settings.Geography
	miles := decimal.NewFromFloat(2 * distanceMiles)
	speed := geo.AvgSpeedMPH
	if speed <= 0 {
		speed = defaultAvgSpeedMPH
	}
	hours := decimal.NewFromFloat(2 * distanceMiles / speed)

	gas := miles.Mul(geo.GasCostPerMile)
	labor := hours.Mul(c.settings.Financial.LaborRate)
	return domain.RoundCents(gas.Add(labor))
}

// RefurbCost = limpieza + add-ons condicionales + horas fijas de trabajo.
func (c *Calculator) RefurbCost(listing domain.Listing) decimal.Decimal {
	s := c.settings
	cost := s.Part(domain.PartCleaning)

	if listing.Condition.AgeMonths > 24 || listing.Condition.HasIssue("thermal", "overheat") {
		cost = cost.Add(s.Part(domain.PartThermalPaste))
	}
	if !listing.Components.Has(domain.ComponentStorage) {
		cost = cost.Add(s.Part(domain.PartSSD))
	}
	if listing.Components.TotalRAMGB() < 16 {
		cost = cost.Add(s.Part(domain.PartRAMStick))
	}
	labor := s.Financial.LaborRate.Mul(decimal.NewFromFloat(s.Financial.RefurbLaborHours))
	return domain.RoundCents(cost.Add(labor))
}

// WalkAwayPrice resuelve hacia atrás el precio máximo de compra que todavía
// deja el beneficio exigido:
//
//	requiredNet = max(minProfit, resale × targetMargin)
//	walkAway    = (resale − requiredNet − transport − refurb − fees − holding) / (1 + tax)
//
// Suelo en 0.
func (c *Calculator) WalkAwayPrice(r domain.ROIResult) decimal.Decimal {
	fin := c.settings.Financial
	requiredNet := decimal.Max(fin.MinProfit, domain.Scale(r.ResalePrice, fin.TargetMarginPct))

	budget := r.ResalePrice.
		Sub(requiredNet).
		Sub(r.TransportCost).
		Sub(r.RefurbCost).
		Sub(r.ListingFees).
		Sub(r.HoldingCost)
	preTax := budget.Div(decimal.NewFromFloat(1 + fin.TaxRate))
	return domain.NonNegative(domain.RoundCents(preTax))
}

// RecommendedOffer devuelve la oferta de apertura, siempre ≤ walkAway.
func (c *Calculator) RecommendedOffer(listing domain.Listing, fmv, walkAway decimal.Decimal) decimal.Decimal {
	k, ok := offerFactor[c.settings.Strategy]
	if !ok {
		k = offerFactor[domain.StrategyFair]
	}
	offer := domain.Scale(fmv, k)

	if asking := listing.AskingPrice(); asking.IsPositive() && asking.LessThanOrEqual(domain.Scale(fmv, cheapOfferRatio)) {
		offer = domain.Scale(asking, cheapOfferPull)
	}
	offer = decimal.Min(offer, walkAway)
	if listing.Risk.Score > riskyThreshold {
		offer = domain.Scale(offer, riskyDiscount)
	}

	offer = domain.RoundToNearest(offer, offerStep)
	if offer.GreaterThan(walkAway) {
		offer = domain.FloorToMultiple(walkAway, offerStep)
	}
	return domain.NonNegative(offer)
}

// DaysToSell estima los días hasta vender.
//
//	base 7; GPU hot −2; sistema completo −1;
//	reventa <$300 −1, $800–1500 +1, >$1500 +3;
//	Nov/Dic −2, Ene/Jun/Jul +1; suelo 3.
func (c *Calculator) DaysToSell(listing domain.Listing, fmv domain.FMVResult, resale decimal.Decimal) int {
	days := baseDaysToSell

	if gpu := listing.Components.GPU; gpu != nil && c.store != nil {
		if g, ok := c.store.GPU(gpu.LookupKey(domain.ComponentGPU)); ok && g.Hot {
			days -= 2
		}
	}
	if fmv.IsCompleteBuild() {
		days--
	}

	switch v := resale.InexactFloat64(); {
	case v > 1500:
		days += 3
	case v >= 800:
		days++
	case v < 300:
		days--
	}

	switch c.now().Month() {
	case time.November, time.December:
		days -= 2
	case time.January, time.June, time.July:
		days++
	}

	return max(days, minDaysToSell)
}
