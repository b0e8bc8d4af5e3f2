package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedQuote is returned when a quote tuple has the wrong arity or field types.
var ErrMalformedQuote = errors.New("malformed quote")

// quoteFields is the tuple arity delivered by the ingestion source.
const quoteFields = 9

// QuotePoint is a single option contract quote.
//
// On the wire it is a positional tuple:
// [daysToExpiration, impliedVolatility, moneyness, symbol, lastPrice, bid, ask, volume, openInterest].
type QuotePoint struct {
	DaysToExpiration  float64
	ImpliedVolatility float64
	Moneyness         float64
	Symbol            string
	LastPrice         float64
	Bid               float64
	Ask               float64
	Volume            int64
	OpenInterest      int64
}

// Info returns the contract fields carried into the info grid.
func (q QuotePoint) Info() ContractInfo {
	return ContractInfo{
		Symbol:       q.Symbol,
		LastPrice:    q.LastPrice,
		Bid:          q.Bid,
		Ask:          q.Ask,
		Volume:       q.Volume,
		OpenInterest: q.OpenInterest,
	}
}

// Validate checks the axis and liquidity fields.
func (q QuotePoint) Validate() error {
	if !isFinite(q.DaysToExpiration) || !isFinite(q.ImpliedVolatility) || !isFinite(q.Moneyness) {
		return fmt.Errorf("%w: non-finite axis value for %q", ErrMalformedQuote, q.Symbol)
	}
	if q.Volume < 0 || q.OpenInterest < 0 {
		return fmt.Errorf("%w: negative volume or open interest for %q", ErrMalformedQuote, q.Symbol)
	}
	return nil
}

// MarshalJSON encodes the quote as a positional tuple.
func (q QuotePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		q.DaysToExpiration,
		q.ImpliedVolatility,
		q.Moneyness,
		q.Symbol,
		q.LastPrice,
		q.Bid,
		q.Ask,
		q.Volume,
		q.OpenInterest,
	})
}

// UnmarshalJSON decodes a positional tuple.
func (q *QuotePoint) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}
	if len(fields) != quoteFields {
		return fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedQuote, quoteFields, len(fields))
	}

	var out QuotePoint
	// The grid coordinates and IV are required; prices and counts treat null as 0.
	numbers := []struct {
		idx      int
		dst      *float64
		required bool
	}{
		{0, &out.DaysToExpiration, true},
		{1, &out.ImpliedVolatility, true},
		{2, &out.Moneyness, true},
		{4, &out.LastPrice, false},
		{5, &out.Bid, false},
		{6, &out.Ask, false},
	}
	for _, n := range numbers {
		if n.required && isNull(fields[n.idx]) {
			return fmt.Errorf("%w: field %d is null", ErrMalformedQuote, n.idx)
		}
		if err := json.Unmarshal(fields[n.idx], n.dst); err != nil {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedQuote, n.idx, err)
		}
	}
	if err := json.Unmarshal(fields[3], &out.Symbol); err != nil {
		return fmt.Errorf("%w: field 3: %v", ErrMalformedQuote, err)
	}

	var volume, openInterest float64
	if err := json.Unmarshal(fields[7], &volume); err != nil {
		return fmt.Errorf("%w: field 7: %v", ErrMalformedQuote, err)
	}
	if err := json.Unmarshal(fields[8], &openInterest); err != nil {
		return fmt.Errorf("%w: field 8: %v", ErrMalformedQuote, err)
	}

	var err error
	if out.Volume, err = ParseCount(volume); err != nil {
		return fmt.Errorf("volume: %w", err)
	}
	if out.OpenInterest, err = ParseCount(openInterest); err != nil {
		return fmt.Errorf("open interest: %w", err)
	}

	*q = out
	return nil
}

// ParseCount converts a numeric count to a non-negative integer.
// Sources built on dataframes deliver counts as floats (e.g. 12.0).
func ParseCount(value float64) (int64, error) {
	if !isFinite(value) || value < 0 || value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: invalid count %v", ErrMalformedQuote, value)
	}
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("%w: count overflows int64", ErrMalformedQuote)
	}
	return int64(value), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
