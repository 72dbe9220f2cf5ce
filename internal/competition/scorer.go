// Package competition estima cuánta competencia de compradores hay por un
// anuncio a partir de sus señales visibles de engagement. Es independiente del
// FMV y del ROI: solo lee el anuncio.
package competition

import (
	"fmt"

	"github.com/alejandrodnm/flipscore/internal/domain"
)

const (
	highBand   = 70.0
	mediumBand = 40.0

	hoursPerDay = 24
)

// Score calcula el competition score 0-100 del anuncio.
// Empieza en 0 y suma o resta por cada umbral; el resultado se limita a [0, 100].
func Score(listing domain.Listing) domain.CompetitionScore {
	e := listing.Engagement
	var (
		score   float64
		reasons []string
		tips    []string
	)

	switch {
	case e.Comments > 20:
		score += 25
		reasons = append(reasons, fmt.Sprintf("%d comments: heavy buyer interest", e.Comments))
		tips = append(tips, "message the seller now; others are already negotiating")
	case e.Comments > 10:
		score += 15
		reasons = append(reasons, fmt.Sprintf("%d comments: strong interest", e.Comments))
	case e.Comments > 5:
		score += 8
		reasons = append(reasons, fmt.Sprintf("%d comments", e.Comments))
	}

	switch {
	case e.Interested > 10:
		score += 20
		reasons = append(reasons, fmt.Sprintf("%d buyers marked interested", e.Interested))
	case e.Interested > 5:
		score += 10
		reasons = append(reasons, fmt.Sprintf("%d buyers marked interested", e.Interested))
	}

	if e.HoursListed > 0 {
		switch {
		case e.HoursListed < 24:
			score += 20
			reasons = append(reasons, "listed less than 24h ago")
			tips = append(tips, "fresh listing: lead with a clean, quick offer")
		case e.HoursListed < 72:
			score += 10
			reasons = append(reasons, "listed less than 3 days ago")
		case e.HoursListed > 14*hoursPerDay:
			score -= 10
			reasons = append(reasons, fmt.Sprintf("listed %.0f days ago", e.HoursListed/hoursPerDay))
			tips = append(tips, "stale listing: seller may accept a lower offer")
		}
	}

	if e.Relists > 0 {
		score -= 5 * float64(e.Relists)
		reasons = append(reasons, fmt.Sprintf("relisted %d times", e.Relists))
		tips = append(tips, "repeated relists suggest the item is not moving")
	}

	if drops := max(e.PriceDrops, listing.Metadata.PriceDropCount()); drops > 0 {
		score -= 10 * float64(drops)
		reasons = append(reasons, fmt.Sprintf("%d price drops", drops))
		tips = append(tips, "seller already cut the price: room for negotiation")
	}

	switch {
	case e.SellerListings > 20:
		score += 10
		reasons = append(reasons, fmt.Sprintf("high-volume seller (%d listings)", e.SellerListings))
		tips = append(tips, "volume seller knows the market: expect prices near FMV")
	case e.SellerListings == 1:
		score -= 5
		reasons = append(reasons, "single-item seller")
	}

	score = domain.ClampFloat(score, 0, 100)
	band, summary := bandFor(score)
	tips = append(tips, summary)

	return domain.CompetitionScore{
		Score:   score,
		Band:    band,
		Reasons: reasons,
		Tips:    tips,
	}
}

func bandFor(score float64) (domain.CompetitionBand, string) {
	switch {
	case score >= highBand:
		return domain.CompetitionHigh, "high competition: expect firm pricing"
	case score >= mediumBand:
		return domain.CompetitionMedium, "moderate competition: standard negotiation"
	}
	return domain.CompetitionLow, "low competition: aggressive offers viable"
}
