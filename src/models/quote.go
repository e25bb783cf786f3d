package models

import "time"

// MQuote is the value of an instrument observed at a point in time.
// A quote is never mutated after construction; a fresher one replaces it.
type MQuote struct {
	Symbol    string    `json:"symbol"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// NewQuote builds a quote stamped with the given observation time.
func NewQuote(symbol string, value float64, observedAt time.Time) MQuote {
	return MQuote{Symbol: symbol, Value: value, Timestamp: observedAt}
}
