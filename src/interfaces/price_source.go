package interfaces

import (
	"context"

	"quote-server/src/models"
)

// -----------------------------------------------------------------------------
// IPriceSource fetches the current quote of one symbol from an external API.
// -----------------------------------------------------------------------------

//go:generate mockgen -package=mocks -destination=mocks/mock_price_source.go -source=price_source.go

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch returns the latest quote for symbol. Any failure (transport, API
	// error, malformed payload) is reported as an error and nothing else.
	Fetch(ctx context.Context, symbol string) (models.MQuote, error)
}
