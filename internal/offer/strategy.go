// Package offer genera los tres niveles de oferta y elige el recomendado
// con reglas de precedencia fijas.
package offer

import (
	"fmt"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	highRiskThreshold = 7.0
	confidentFMV      = 0.85
	strongROI         = 50.0
	offerStep         = 10
)

// bounds son las fracciones de cada referencia para un nivel.
// La oferta es el mínimo de las referencias disponibles.
type bounds struct {
	fmv, asking, walkAway float64
}

var tierBounds = map[domain.OfferTier]bounds{
	domain.OfferAggressive:   {fmv: 0.60, asking: 0.70, walkAway: 0.85},
	domain.OfferFair:         {fmv: 0.70, asking: 0.80, walkAway: 0.95},
	domain.OfferConservative: {fmv: 0.78, asking: 0.90, walkAway: 1.00},
}

// Generator construye OfferStrategy. El store identifica GPUs de alta demanda.
type Generator struct {
	store *pricing.Store
}

// NewGenerator crea un Generator sobre el store dado.
func NewGenerator(store *pricing.Store) *Generator {
	return &Generator{store: store}
}

// Generate calcula los tres niveles y el recomendado. competition es opcional:
// si viene, solo se añade al rationale.
func (g *Generator) Generate(listing domain.Listing, fmv domain.FMVResult, roi domain.ROIResult, competition *domain.CompetitionScore) domain.OfferStrategy {
	s := domain.OfferStrategy{
		Aggressive:   tierOffer(domain.OfferAggressive, listing, fmv.Total, roi.WalkAwayPrice),
		Fair:         tierOffer(domain.OfferFair, listing, fmv.Total, roi.WalkAwayPrice),
		Conservative: tierOffer(domain.OfferConservative, listing, fmv.Total, roi.WalkAwayPrice),
	}

	tier, why := g.recommend(listing, fmv, roi)
	s.Recommended = tier
	s.RecommendedOffer = s.Offer(tier).Amount
	s.Rationale = why
	if competition != nil {
		s.Rationale += fmt.Sprintf("; competition %.0f/100 (%s)", competition.Score, competition.Band)
	}
	return s
}

// recommend aplica las reglas en orden; gana la primera que case.
func (g *Generator) recommend(listing domain.Listing, fmv domain.FMVResult, roi domain.ROIResult) (domain.OfferTier, string) {
	switch {
	case listing.Risk.Score > highRiskThreshold:
		return domain.OfferAggressive, fmt.Sprintf("high risk score %.1f: price the risk in", listing.Risk.Score)
	case listing.Metadata.PriceDropCount() > 0:
		return domain.OfferAggressive, "seller has already dropped the price"
	case fmv.Confidence > confidentFMV && roi.ROI > strongROI:
		return domain.OfferFair, fmt.Sprintf("confident valuation with %.0f%% ROI: a fair offer closes the deal", roi.ROI)
	case g.highDemandGPU(listing):
		return domain.OfferConservative, "high-demand GPU: lowball offers will lose the deal"
	}
	return domain.OfferFair, "standard negotiation"
}

func (g *Generator) highDemandGPU(listing domain.Listing) bool {
	gpu := listing.Components.GPU
	if gpu == nil || g.store == nil {
		return false
	}
	tier, ok := g.store.GPU(gpu.LookupKey(domain.ComponentGPU))
	return ok && tier.HighDemand
}

// tierOffer = min(fmv·f, asking·a, walkAway·w), redondeado a $10 y con suelo en 0.
// Sin precio pedido la cota del asking no se usa. Si el redondeo supera el
// walk-away, baja al múltiplo de $10 inferior.
func tierOffer(t domain.OfferTier, listing domain.Listing, fmv, walkAway decimal.Decimal) domain.Offer {
	b := tierBounds[t]
	amount := decimal.Min(domain.Scale(fmv, b.fmv), domain.Scale(walkAway, b.walkAway))
	if asking := listing.AskingPrice(); listing.HasPrice() && asking.IsPositive() {
		amount = decimal.Min(amount, domain.Scale(asking, b.asking))
	}
	amount = domain.RoundToNearest(amount, offerStep)
	if amount.GreaterThan(walkAway) {
		amount = domain.FloorToMultiple(walkAway, offerStep)
	}
	return domain.Offer{
		Tier:   t,
		Amount: domain.NonNegative(amount),
	}
}
