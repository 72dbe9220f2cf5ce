package competition

import (
	"testing"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScore_HotListing(t *testing.T) {
	l := domain.Listing{Engagement: domain.Engagement{
		Comments:       25,
		Interested:     12,
		HoursListed:    5,
		SellerListings: 30,
	}}
	s := Score(l)
	assert.Equal(t, 75.0, s.Score)
	assert.Equal(t, domain.CompetitionHigh, s.Band)
	assert.Len(t, s.Reasons, 4)
	assert.Equal(t, "high competition: expect firm pricing", s.Tips[len(s.Tips)-1])
}

func TestScore_StaleListing(t *testing.T) {
	l := domain.Listing{Engagement: domain.Engagement{
		HoursListed:    20 * 24,
		Relists:        2,
		SellerListings: 1,
	}}
	s := Score(l)
	assert.Equal(t, 0.0, s.Score)
	assert.Equal(t, domain.CompetitionLow, s.Band)
	assert.Contains(t, s.Tips, "low competition: aggressive offers viable")
}

func TestScore_MediumBand(t *testing.T) {
	l := domain.Listing{Engagement: domain.Engagement{Comments: 12, Interested: 6, HoursListed: 48}}
	s := Score(l)
	assert.Equal(t, 35.0, s.Score)
	assert.Equal(t, domain.CompetitionLow, s.Band)

	l.Engagement.Comments = 21
	s = Score(l)
	assert.Equal(t, 45.0, s.Score)
	assert.Equal(t, domain.CompetitionMedium, s.Band)
}

func TestScore_PriceDropsUseLargerSignal(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := domain.Listing{
		Engagement: domain.Engagement{Comments: 25, Interested: 12, PriceDrops: 1},
		Metadata: domain.Metadata{PriceHistory: []domain.PricePoint{
			{Price: domain.Dollars(900), Date: now},
			{Price: domain.Dollars(850), Date: now.Add(24 * time.Hour)},
			{Price: domain.Dollars(800), Date: now.Add(48 * time.Hour)},
		}},
	}
	// 25 + 20 − 2 × 10
	assert.Equal(t, 25.0, Score(l).Score)
}

func TestScore_AlwaysClamped(t *testing.T) {
	extremes := []domain.Engagement{
		{},
		{Comments: 1 << 30, Interested: 1 << 30, HoursListed: 1, SellerListings: 1 << 30},
		{Relists: 1 << 20, PriceDrops: 1 << 20, HoursListed: 1e9, SellerListings: 1},
		{Comments: -5, Interested: -5, HoursListed: -1},
	}
	for _, e := range extremes {
		s := Score(domain.Listing{Engagement: e})
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 100.0)
		assert.NotEmpty(t, s.Tips)
	}
}
