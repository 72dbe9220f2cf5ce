package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/flipscore/internal/adapters/storage"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDeal(id string, score float64, asking float64) domain.Deal {
	return domain.Deal{
		ID: id,
		Listing: domain.Listing{
			ID:       "listing-" + id,
			Platform: "marketplace",
			Title:    "Gaming PC " + id,
			URL:      "https://example.com/item/" + id,
			Price:    decimal.NewNullDecimal(domain.Dollars(asking)),
		},
		FMV: domain.FMVResult{Total: domain.Dollars(1008.81), Confidence: 0.88},
		ROI: domain.ROIResult{
			NetProfit:        domain.Dollars(241.57),
			RecommendedOffer: domain.Dollars(650),
			WalkAwayPrice:    domain.Dollars(653.31),
			DealScore:        score,
		},
		EvaluatedAt: time.Now().UTC(),
	}
}

func cycle(n int) domain.CycleSummary {
	return domain.CycleSummary{ID: uuid.NewString(), Listings: n, Deals: n}
}

func window() (time.Time, time.Time) {
	return time.Now().Add(-time.Minute), time.Now().Add(time.Minute)
}

func TestSQLiteStorage_SaveAndGetHistory(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	deals := []domain.Deal{makeDeal("aaa", 72, 800), makeDeal("bbb", 88, 700)}
	require.NoError(t, db.SaveCycle(context.Background(), cycle(2), deals))

	from, to := window()
	history, err := db.GetHistory(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Ordenados por score desc
	assert.Equal(t, "bbb", history[0].DealID)
	assert.InDelta(t, 88.0, history[0].DealScore, 0.001)
	assert.Equal(t, "700.00", history[0].AskingPrice.StringFixed(2))
	assert.Equal(t, "1008.81", history[0].FMV.StringFixed(2))
	assert.Equal(t, "653.31", history[0].WalkAwayPrice.StringFixed(2))
	assert.Equal(t, "listing-bbb", history[0].ListingID)
	assert.False(t, history[0].FirstSeen.IsZero())
}

func TestSQLiteStorage_SaveEmptyCycle(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveCycle(context.Background(), cycle(0), nil))

	n, err := db.CycleCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStorage_GetHistory_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	history, err := db.GetHistory(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSQLiteStorage_UpsertKeepsPeak(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 90, 800)}))
	require.NoError(t, db.SaveCycle(ctx, cycle(2), []domain.Deal{makeDeal("x", 60, 750), makeDeal("y", 40, 300)}))

	from, to := window()
	history, err := db.GetHistory(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "x", history[0].DealID)
	assert.InDelta(t, 60.0, history[0].DealScore, 0.001)
	assert.InDelta(t, 90.0, history[0].PeakScore, 0.001)
	assert.Equal(t, "750.00", history[0].AskingPrice.StringFixed(2))

	n, err := db.CycleCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteStorage_SkipsUnchangedDeals(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))
	// menos de un 5% de cambio y mismo precio: no se reescribe
	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 81, 800)}))

	from, to := window()
	history, err := db.GetHistory(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 80.0, history[0].DealScore, 0.001)
}

func TestSQLiteStorage_WarmCacheAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.db")
	ctx := context.Background()

	db, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))
	require.NoError(t, db.Close())

	db, err = storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80.5, 800)}))
	from, to := window()
	history, err := db.GetHistory(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 80.0, history[0].DealScore, 0.001, "cache warmed from disk skips the redundant write")
}

func TestSQLiteStorage_UnchangedDealsStayInHistory(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storage.SetClock(db, func() time.Time { return clock })

	require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))
	for day := 0; day < 3; day++ {
		clock = clock.Add(24 * time.Hour)
		require.NoError(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))
	}

	history, err := db.GetHistory(ctx, clock.Add(-time.Hour), clock.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1, "an unchanged deal seen this cycle is still in the window")
	assert.Equal(t, clock.UnixMilli(), history[0].LastSeen.UnixMilli())
	assert.Equal(t, clock.Add(-72*time.Hour).UnixMilli(), history[0].FirstSeen.UnixMilli())
	assert.InDelta(t, 80.0, history[0].DealScore, 0.001)
}

func TestSQLiteStorage_CacheOnlyAfterCommit(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, db.SaveCycle(ctx, cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))

	// el ciclo fallido no debe dejar el deal marcado como guardado
	require.NoError(t, db.SaveCycle(context.Background(), cycle(1), []domain.Deal{makeDeal("x", 80, 800)}))
	from, to := window()
	history, err := db.GetHistory(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "x", history[0].DealID)
}
