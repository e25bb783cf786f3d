package interfaces

import "quote-server/src/models"

// -----------------------------------------------------------------------------
// IQuoteReader is the read side of the quote cache used by request handlers.
// -----------------------------------------------------------------------------

type IQuoteReader interface {

	// Get returns the latest quote for symbol, or false if none was ever written.
	Get(symbol string) (models.MQuote, bool)

	// -----------------------------------------------------------------------------

	// ListSymbols returns the symbols currently present in the cache.
	ListSymbols() []string
}

// -----------------------------------------------------------------------------
// IQuoteWriter is the write side of the quote cache, used by the refresher only.
// -----------------------------------------------------------------------------

type IQuoteWriter interface {
	Put(symbol string, quote models.MQuote)
}

// -----------------------------------------------------------------------------

type IQuoteStore interface {
	IQuoteReader
	IQuoteWriter

	// Snapshot returns every cached quote.
	Snapshot() []models.MQuote
}
