package interfaces

import "quote-server/src/models"

// -----------------------------------------------------------------------------
// IQuoteListener is notified after a fresh quote has been written to the cache.
// Implementations must not block the caller.
// -----------------------------------------------------------------------------

type IQuoteListener interface {
	Publish(quote models.MQuote)
}

// -----------------------------------------------------------------------------
// IMarketClock reports whether any tracked market is currently trading.
// -----------------------------------------------------------------------------

type IMarketClock interface {
	AnyMarketOpen() bool
}
