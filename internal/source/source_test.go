package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volSurface/internal/model"
)

const envelope = `{
  "data": [
    [30, 0.20, 0.9, "X1", 5.1, 5.0, 5.2, 100.0, 50.0],
    [30, 0.25, 1.0, "X2", 2.2, 2.1, 2.3, 5.0, 2.0],
    [60, 0.22, 1.0, "X3", 3.4, 3.3, 3.5, 50.0, 30.0]
  ],
  "timestamp": "2024-06-01T12:00:00"
}`

func TestReadJSONEnvelope(t *testing.T) {
	points, err := ReadJSON(strings.NewReader(envelope))
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "X2", points[1].Symbol)
	assert.Equal(t, int64(5), points[1].Volume)
	assert.Equal(t, 60.0, points[2].DaysToExpiration)
}

func TestReadJSONBareArray(t *testing.T) {
	points, err := ReadJSON(strings.NewReader(`[[7, 0.4, 1.1, "A", 1, 1, 1, 3, 4]]`))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(4), points[0].OpenInterest)
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"error": "ticker not found"}`))
	assert.ErrorContains(t, err, "ticker not found")

	_, err = ReadJSON(strings.NewReader(`[[7, 0.4, 1.1]]`))
	assert.ErrorIs(t, err, model.ErrMalformedQuote)

	_, err = ReadJSON(strings.NewReader(`[[30, null, 0.9, "X1", 1, 1, 1, 1, 1]]`))
	assert.ErrorIs(t, err, model.ErrMalformedQuote, "a missing IV must not become a zero cell")

	_, err = ReadJSONL(strings.NewReader("[30, 0.2, null, \"X1\", 1, 1, 1, 1, 1]\n"))
	assert.ErrorIs(t, err, model.ErrMalformedQuote)
}

func TestReadJSONL(t *testing.T) {
	input := "[30, 0.20, 0.9, \"X1\", 5.1, 5.0, 5.2, 100, 50]\n\n[60, 0.22, 1.0, \"X3\", 3.4, 3.3, 3.5, 50, 30]\n"
	points, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "X3", points[1].Symbol)

	_, err = ReadJSONL(strings.NewReader("[1, 2]\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestReadCSV(t *testing.T) {
	input := "daysToExpiration,impliedVolatility,Moneyness,contractSymbol,lastPrice,bid,ask,volume,openInterest\n" +
		"30,0.2,0.9,X1,5.1,5,5.2,100.0,50\n" +
		"60,0.22,1.0,X3,3.4,3.3,3.5,50,30.0\n"
	points, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, model.QuotePoint{
		DaysToExpiration: 30, ImpliedVolatility: 0.2, Moneyness: 0.9, Symbol: "X1",
		LastPrice: 5.1, Bid: 5, Ask: 5.2, Volume: 100, OpenInterest: 50,
	}, points[0])

	_, err = ReadCSV(strings.NewReader("daysToExpiration,impliedVolatility,Moneyness,contractSymbol,lastPrice,bid,ask,volume,openInterest\n" +
		"30,0.2,0.9,X1,5.1,5,5.2,1.5,50\n"))
	assert.ErrorIs(t, err, model.ErrMalformedQuote)
}

func TestReadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.json")
	require.NoError(t, os.WriteFile(path, []byte(envelope), 0o644))

	format, err := ParseFormat("", path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	points, err := ReadFile(path, format)
	require.NoError(t, err)
	assert.Len(t, points, 3)

	format, err = ParseFormat("", "x.ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, format)

	_, err = ParseFormat("xml", path)
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	points := []model.QuotePoint{
		{DaysToExpiration: 30, ImpliedVolatility: 0.2, Moneyness: 1.0},
		{DaysToExpiration: 30, ImpliedVolatility: 0.2, Moneyness: 0.4},
		{DaysToExpiration: 30, ImpliedVolatility: 2.5, Moneyness: 1.0},
		{DaysToExpiration: 30, ImpliedVolatility: 0.0005, Moneyness: 1.0},
		{DaysToExpiration: 90, ImpliedVolatility: 0.2, Moneyness: 1.0},
		{DaysToExpiration: 61, ImpliedVolatility: 2, Moneyness: 1.5},
	}
	kept := Prune(points, DefaultPruneConfig())
	require.Len(t, kept, 2)
	assert.Equal(t, 61.0, kept[1].DaysToExpiration)
	assert.Len(t, points, 6)
}
