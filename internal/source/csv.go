package source

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"volSurface/internal/model"
)

// csvRow mirrors the options-data dataframe columns.
type csvRow struct {
	DaysToExpiration  float64 `csv:"daysToExpiration"`
	ImpliedVolatility float64 `csv:"impliedVolatility"`
	Moneyness         float64 `csv:"Moneyness"`
	ContractSymbol    string  `csv:"contractSymbol"`
	LastPrice         float64 `csv:"lastPrice"`
	Bid               float64 `csv:"bid"`
	Ask               float64 `csv:"ask"`
	Volume            float64 `csv:"volume"`
	OpenInterest      float64 `csv:"openInterest"`
}

// ReadCSV decodes quotes from a CSV file with a header row.
func ReadCSV(r io.Reader) ([]model.QuotePoint, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CSV: %w", err)
	}

	points := make([]model.QuotePoint, 0, len(rows))
	for idx, row := range rows {
		volume, err := model.ParseCount(row.Volume)
		if err != nil {
			return nil, fmt.Errorf("row %d volume: %w", idx+1, err)
		}
		openInterest, err := model.ParseCount(row.OpenInterest)
		if err != nil {
			return nil, fmt.Errorf("row %d open interest: %w", idx+1, err)
		}

		points = append(points, model.QuotePoint{
			DaysToExpiration:  row.DaysToExpiration,
			ImpliedVolatility: row.ImpliedVolatility,
			Moneyness:         row.Moneyness,
			Symbol:            row.ContractSymbol,
			LastPrice:         row.LastPrice,
			Bid:               row.Bid,
			Ask:               row.Ask,
			Volume:            volume,
			OpenInterest:      openInterest,
		})
	}
	return points, nil
}
