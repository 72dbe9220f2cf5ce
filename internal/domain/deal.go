package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ROIResult es el modelo de costes y beneficio de comprar y revender un anuncio.
// Porcentajes en unidades de porcentaje (55 = 55%).
type ROIResult struct {
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ResalePrice   decimal.Decimal `json:"resale_price"`

	// --- Costes ---
	TransportCost   decimal.Decimal `json:"transport_cost"`
	RefurbCost      decimal.Decimal `json:"refurb_cost"`
	ListingFees     decimal.Decimal `json:"listing_fees"`
	Taxes           decimal.Decimal `json:"taxes"`
	HoldingCost     decimal.Decimal `json:"holding_cost"`
	TotalInvestment decimal.Decimal `json:"total_investment"`

	// --- Beneficio ---
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	ProfitMargin    float64         `json:"profit_margin"`
	ROI             float64         `json:"roi"`
	RiskAdjustedROI float64         `json:"risk_adjusted_roi"`

	// --- Estrategia ---
	DealScore        float64         `json:"deal_score"`
	RecommendedOffer decimal.Decimal `json:"recommended_offer"`
	WalkAwayPrice    decimal.Decimal `json:"walk_away_price"`
	BreakEvenPrice   decimal.Decimal `json:"break_even_price"`

	// --- Tiempo ---
	EstimatedDaysToSell int     `json:"estimated_days_to_sell"`
	DailyROI            float64 `json:"daily_roi"`
}

// CompetitionBand es la franja del competition score.
type CompetitionBand string

const (
	CompetitionHigh   CompetitionBand = "high"
	CompetitionMedium CompetitionBand = "medium"
	CompetitionLow    CompetitionBand = "low"
)

// CompetitionScore estima cuánta competencia de compradores hay por un anuncio.
type CompetitionScore struct {
	Score   float64         `json:"score"`
	Band    CompetitionBand `json:"band"`
	Reasons []string        `json:"reasons"`
	Tips    []string        `json:"tips"`
}

// OfferTier nombra uno de los tres niveles de oferta.
type OfferTier string

const (
	OfferAggressive   OfferTier = "aggressive"
	OfferFair         OfferTier = "fair"
	OfferConservative OfferTier = "conservative"
)

// Offer es una oferta candidata.
type Offer struct {
	Tier   OfferTier       `json:"tier"`
	Amount decimal.Decimal `json:"amount"`
}

// OfferStrategy contiene los tres niveles y el recomendado.
type OfferStrategy struct {
	Aggressive       Offer           `json:"aggressive"`
	Fair             Offer           `json:"fair"`
	Conservative     Offer           `json:"conservative"`
	Recommended      OfferTier       `json:"recommended"`
	RecommendedOffer decimal.Decimal `json:"recommended_offer"`
	Rationale        string          `json:"rationale"`
}

// Offer devuelve la oferta del nivel dado.
func (s OfferStrategy) Offer(t OfferTier) Offer {
	switch t {
	case OfferAggressive:
		return s.Aggressive
	case OfferConservative:
		return s.Conservative
	default:
		return s.Fair
	}
}

// Deal es el resultado completo de evaluar un anuncio.
// Es lo que rankea el scanner, persiste el storage y muestra el notifier.
type Deal struct {
	ID          string
	Listing     Listing
	FMV         FMVResult
	ROI         ROIResult
	Competition CompetitionScore
	Offer       OfferStrategy
	EvaluatedAt time.Time
}

// IsHot devuelve true si el deal supera el umbral de score dado.
func (d Deal) IsHot(minScore float64) bool {
	return d.ROI.DealScore >= minScore
}

// DealRecord es la fila persistida de un deal: el último estado visto más el pico de score.
type DealRecord struct {
	DealID           string
	ListingID        string
	Platform         string
	Title            string
	URL              string
	AskingPrice      decimal.Decimal
	FMV              decimal.Decimal
	NetProfit        decimal.Decimal
	RecommendedOffer decimal.Decimal
	WalkAwayPrice    decimal.Decimal
	DealScore        float64
	PeakScore        float64
	Confidence       float64
	FirstSeen        time.Time
	LastSeen         time.Time
}

// CycleSummary resume un ciclo de escaneo.
type CycleSummary struct {
	ID        string
	ScannedAt time.Time
	Listings  int // anuncios recibidos del feed
	Deals     int // deals que pasaron el filtro
	Hot       int
	BestScore float64
}
