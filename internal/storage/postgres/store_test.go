package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volSurface/internal/grid"
	"volSurface/internal/model"
	"volSurface/internal/storage"
)

func TestCellRowsRoundTrip(t *testing.T) {
	ds, err := grid.NewDataset("META", model.OptionTypeCall, []model.QuotePoint{
		{DaysToExpiration: 30, ImpliedVolatility: 0.20, Moneyness: 0.9, Symbol: "X1", LastPrice: 5.1, Bid: 5, Ask: 5.2, Volume: 100, OpenInterest: 50},
		{DaysToExpiration: 60, ImpliedVolatility: 0.22, Moneyness: 1.0, Symbol: "X3", LastPrice: 3.4, Bid: 3.3, Ask: 3.5, Volume: 50, OpenInterest: 30},
	}, nil)
	require.NoError(t, err)

	snap, err := storage.NewSnapshot("META", model.OptionTypeCall, ds.Surface(), time.Unix(1717243200, 0))
	require.NoError(t, err)

	rows := cellRows(snap)
	require.Len(t, rows, 4)
	assert.Nil(t, rows[1].Symbol, "filled cell has no contract columns")
	require.NotNil(t, rows[3].Volume)
	assert.Equal(t, int64(50), *rows[3].Volume)

	loaded := storage.Snapshot{Expirations: snap.Expirations, Moneyness: snap.Moneyness}
	require.NoError(t, applyCells(&loaded, rows))
	assert.Equal(t, snap.Vol, loaded.Vol)
	assert.Equal(t, snap.Info, loaded.Info)
}

func TestApplyCellsOutOfShape(t *testing.T) {
	snap := storage.Snapshot{Expirations: []float64{30}, Moneyness: []float64{1}}
	err := applyCells(&snap, []cellRow{{ExpIdx: 1, MonIdx: 0, IV: 0.2}})
	assert.Error(t, err)
}

// Runs against a live database when VOLSURFACE_TEST_PG_DSN is set.
func TestStoreLatestSnapshot(t *testing.T) {
	dsn := os.Getenv("VOLSURFACE_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("VOLSURFACE_TEST_PG_DSN not set")
	}
	ctx := context.Background()

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	ticker := fmt.Sprintf("T%d", time.Now().UnixNano())
	ds, err := grid.NewDataset(ticker, model.OptionTypeCall, []model.QuotePoint{
		{DaysToExpiration: 30, ImpliedVolatility: 0.20, Moneyness: 0.9, Symbol: "X1", Volume: 100, OpenInterest: 50},
		{DaysToExpiration: 30, ImpliedVolatility: 0.25, Moneyness: 1.0, Symbol: "X2", Volume: 5, OpenInterest: 2},
		{DaysToExpiration: 60, ImpliedVolatility: 0.22, Moneyness: 1.0, Symbol: "X3", Volume: 50, OpenInterest: 30},
	}, nil)
	require.NoError(t, err)

	_, found, err := store.LatestSnapshot(ctx, ticker, model.OptionTypeCall)
	require.NoError(t, err)
	assert.False(t, found)

	first, err := storage.NewSnapshot(ticker, model.OptionTypeCall, ds.Surface(), time.Unix(1717243200, 0))
	require.NoError(t, err)
	require.NoError(t, store.PutSnapshot(ctx, first))

	filtered, err := ds.Reprocess(10, 0)
	require.NoError(t, err)
	second, err := storage.NewSnapshot(ticker, model.OptionTypeCall, filtered, time.Unix(1717243260, 0))
	require.NoError(t, err)
	require.NoError(t, store.PutSnapshot(ctx, second))

	got, found, err := store.LatestSnapshot(ctx, ticker, model.OptionTypeCall)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(10), got.Filter.MinVolume)
	assert.Equal(t, second.Vol, got.Vol)
	assert.Equal(t, 2, got.Summary.Observed)

	s, err := got.Surface()
	require.NoError(t, err)
	require.NotNil(t, s.Info[0][0])
	assert.Equal(t, "X1", s.Info[0][0].Symbol)
	assert.Nil(t, s.Info[0][1])
}
