package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volSurface/internal/grid"
	"volSurface/internal/model"
)

func testDataset(t *testing.T) *grid.Dataset {
	t.Helper()
	ds, err := grid.NewDataset("META", model.OptionTypePut, []model.QuotePoint{
		{DaysToExpiration: 30, ImpliedVolatility: 0.20, Moneyness: 0.9, Symbol: "X1", Volume: 100, OpenInterest: 50},
		{DaysToExpiration: 30, ImpliedVolatility: 0.25, Moneyness: 1.0, Symbol: "X2", Volume: 5, OpenInterest: 2},
		{DaysToExpiration: 60, ImpliedVolatility: 0.22, Moneyness: 1.0, Symbol: "X3", Volume: 50, OpenInterest: 30},
	}, nil)
	require.NoError(t, err)
	return ds
}

func TestJsonlStorageRoundTrip(t *testing.T) {
	ds := testDataset(t)
	path := filepath.Join(t.TempDir(), "out", "surfaces.jsonl")
	sink := NewJsonlStorage(path)

	first, err := NewSnapshot(ds.Ticker(), ds.OptionType(), ds.Surface(), time.Unix(1717243200, 0))
	require.NoError(t, err)
	require.NoError(t, sink.PutSnapshot(context.Background(), first))

	filtered, err := ds.Reprocess(10, 0)
	require.NoError(t, err)
	second, err := NewSnapshot(ds.Ticker(), ds.OptionType(), filtered, time.Unix(1717243260, 0))
	require.NoError(t, err)
	require.NoError(t, sink.PutSnapshot(context.Background(), second))

	snaps, err := ReadSnapshots(path)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(10), snaps[1].Filter.MinVolume)
	assert.Equal(t, model.OptionTypePut, snaps[0].OptionType)

	s, err := snaps[0].Surface()
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 60}, s.Expirations)
	assert.Equal(t, 3, s.Observed())
	assert.InDelta(t, (0.20+0.25+0.22)/3, s.Vol[1][0], 1e-12)
	assert.Nil(t, s.Info[1][0])
}

func TestNewSnapshotRequiresFilledSurface(t *testing.T) {
	s, err := grid.Build([]model.QuotePoint{
		{DaysToExpiration: 30, ImpliedVolatility: 0.2, Moneyness: 0.9},
		{DaysToExpiration: 60, ImpliedVolatility: 0.3, Moneyness: 1.0},
	}, grid.Filter{})
	require.NoError(t, err)

	_, err = NewSnapshot("META", model.OptionTypeCall, s, time.Now())
	assert.Error(t, err)
}

func TestSnapshotShapeMismatch(t *testing.T) {
	snap := Snapshot{Expirations: []float64{30, 60}, Moneyness: []float64{1}, Vol: [][]float64{{0.2}}}
	_, err := snap.Surface()
	assert.Error(t, err)
}

func TestSelectLatest(t *testing.T) {
	base := time.Unix(1717243200, 0).UTC()
	snaps := []Snapshot{
		{Ticker: "META", OptionType: model.OptionTypeCall, CreatedAt: base.Add(time.Minute)},
		{Ticker: "META", OptionType: model.OptionTypeCall, CreatedAt: base},
		{Ticker: "META", OptionType: model.OptionTypePut, CreatedAt: base.Add(time.Hour)},
		{Ticker: "AAPL", OptionType: model.OptionTypeCall, CreatedAt: base.Add(2 * time.Hour)},
	}

	got, ok := SelectLatest(snaps, "META", model.OptionTypeCall)
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Minute), got.CreatedAt)

	got, ok = SelectLatest(snaps, "", model.OptionTypeCall)
	require.True(t, ok)
	assert.Equal(t, "AAPL", got.Ticker)

	_, ok = SelectLatest(snaps, "TSLA", model.OptionTypeCall)
	assert.False(t, ok)
}
