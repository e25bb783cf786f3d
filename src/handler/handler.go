package handler

import (
	"encoding/json"
	"time"

	"quote-server/src/interfaces"
	"quote-server/src/models"
)

// Operation is the decoded intent of a client request.
type Operation int

const (
	OpUnknown Operation = iota
	OpListSymbols
	OpGetQuote
)

func (o Operation) String() string {
	switch o {
	case OpListSymbols:
		return "list_symbols"
	case OpGetQuote:
		return "get_quote"
	default:
		return "unknown"
	}
}

// Status of a handled request, independent of the transport.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
)

// Request is what a transport decodes from the wire.
type Request struct {
	Op     Operation
	Symbol string
}

// Response carries either a quote, a symbol list, or nothing (not found).
type Response struct {
	Status  Status
	Quote   *models.MQuote
	Symbols []string
}

// -----------------------------------------------------------------------------

// NotFound is the response for absent quotes and undecodable requests.
func NotFound() Response {
	return Response{Status: StatusNotFound}
}

// -----------------------------------------------------------------------------

// Handle answers req from reader. It never writes to the cache.
func Handle(req Request, reader interfaces.IQuoteReader) Response {
	switch req.Op {
	case OpListSymbols:
		return Response{Status: StatusOK, Symbols: reader.ListSymbols()}

	case OpGetQuote:
		q, ok := reader.Get(req.Symbol)
		if !ok {
			return NotFound()
		}
		return Response{Status: StatusOK, Quote: &q}

	default:
		return NotFound()
	}
}

// -----------------------------------------------------------------------------
// Wire rendering
// -----------------------------------------------------------------------------

// quoteBody fixes the key order of the quote document.
type quoteBody struct {
	Timestamp string  `json:"timestamp"`
	Symbol    string  `json:"symbol"`
	Value     float64 `json:"value"`
}

// Body renders the JSON document sent to HTTP clients. Not-found responses
// have an empty body. A quote whose value has no JSON form (NaN, Inf) is an
// error.
func (r Response) Body() ([]byte, error) {
	if r.Status != StatusOK {
		return nil, nil
	}

	if r.Quote != nil {
		return json.Marshal(quoteBody{
			Timestamp: r.Quote.Timestamp.Format(time.RFC3339Nano),
			Symbol:    r.Quote.Symbol,
			Value:     r.Quote.Value,
		})
	}

	symbols := r.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	return json.Marshal(symbols)
}
