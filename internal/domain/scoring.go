package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// DealScoreInputs son las señales que combina el deal score.
type DealScoreInputs struct {
	ROI          float64 // %
	ProfitMargin float64 // %
	NetProfit    decimal.Decimal
	RiskScore    float64 // 0..10
	Confidence   float64 // 0..0.95
	DailyROI     float64 // % por día
}

// DealScore calcula el score compuesto 0-100 de un deal.
//
// Fórmula: base 50 + contribuciones por bucket, luego clamp a [0, 100].
//   - ROI:        +30 (>50%) | +20 (>35%) | +10 (>20%) | -10 (<10%)
//   - margen:     +20 (>40%) | +15 (>30%) | +10 (>20%) | -10 (<15%)
//   - beneficio:  +20 (>$300) | +15 (>$200) | +10 (>$150) | -10 (<$100)
//   - riesgo:     -2 × riskScore
//   - confianza:  +confidence × 10
//   - daily ROI:  +10 (>5%/día) | +5 (>3%/día)
func DealScore(in DealScoreInputs) float64 {
	score := 50.0

	switch {
	case in.ROI > 50:
		score += 30
	case in.ROI > 35:
		score += 20
	case in.ROI > 20:
		score += 10
	case in.ROI < 10:
		score -= 10
	}

	switch {
	case in.ProfitMargin > 40:
		score += 20
	case in.ProfitMargin > 30:
		score += 15
	case in.ProfitMargin > 20:
		score += 10
	case in.ProfitMargin < 15:
		score -= 10
	}

	profit := in.NetProfit.InexactFloat64()
	switch {
	case profit > 300:
		score += 20
	case profit > 200:
		score += 15
	case profit > 150:
		score += 10
	case profit < 100:
		score -= 10
	}

	score -= 2 * in.RiskScore
	score += in.Confidence * 10

	switch {
	case in.DailyROI > 5:
		score += 10
	case in.DailyROI > 3:
		score += 5
	}

	if math.IsNaN(score) {
		return 0
	}
	return ClampFloat(score, 0, 100)
}

// RiskAdjustedROI penaliza el ROI por riesgo y por falta de confianza.
//
// Fórmula: roi × (1 − riskScore/20) × (0.5 + confidence × 0.5)
func RiskAdjustedROI(roi, riskScore, confidence float64) float64 {
	return roi * (1 - riskScore/20) * (0.5 + confidence*0.5)
}

// ClampConfidence limita una confianza a [0, 0.95]: nunca se reporta certeza total.
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return ClampFloat(c, 0, MaxConfidence)
}

// MaxConfidence es el techo de cualquier confianza reportada.
const MaxConfidence = 0.95
