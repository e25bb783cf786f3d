package financego

import (
	"context"
	"time"

	"quote-server/src/helpers"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/models"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
)

var _ interfaces.IPriceSource = (*Source)(nil)

// Source reads quotes through the piquette/finance-go Yahoo client. The client
// has no context support, so cancellation is only observed before the call.
type Source struct {
	Logger *logger.Logger

	get func(symbol string) (*finance.Quote, error)
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewSource(log *logger.Logger) *Source {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Source{Logger: log, get: quote.Get, now: time.Now}
}

// -----------------------------------------------------------------------------

func (s *Source) Name() string {
	return "finance-go"
}

// -----------------------------------------------------------------------------

func (s *Source) Fetch(ctx context.Context, symbol string) (models.MQuote, error) {
	if err := ctx.Err(); err != nil {
		return models.MQuote{}, helpers.NewFetchError(symbol, err)
	}

	q, err := s.get(symbol)
	if err != nil {
		return models.MQuote{}, helpers.NewFetchError(symbol, err)
	}
	if q == nil {
		return models.MQuote{}, helpers.NewDecodeError(symbol, "no quote returned")
	}
	if err := helpers.CheckPrice(symbol, q.RegularMarketPrice); err != nil {
		return models.MQuote{}, err
	}

	return models.NewQuote(symbol, q.RegularMarketPrice, s.now()), nil
}
