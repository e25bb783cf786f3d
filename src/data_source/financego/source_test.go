package financego

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote-server/src/helpers"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/require"
)

func stubSource(q *finance.Quote, err error) *Source {
	s := NewSource(nil)
	s.get = func(string) (*finance.Quote, error) { return q, err }
	s.now = func() time.Time { return time.Unix(1709326800, 0) }
	return s
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	s := stubSource(&finance.Quote{Symbol: "MSFT", RegularMarketPrice: 306.16}, nil)

	q, err := s.Fetch(context.Background(), "MSFT")

	require.NoError(t, err)
	require.Equal(t, "MSFT", q.Symbol)
	require.Equal(t, 306.16, q.Value)
	require.Equal(t, int64(1709326800), q.Timestamp.Unix())
}

func TestFetch_Failures(t *testing.T) {
	t.Parallel()

	var fetchErr *helpers.FetchError
	_, err := stubSource(nil, errors.New("remote error")).Fetch(context.Background(), "MSFT")
	require.ErrorAs(t, err, &fetchErr)

	var decodeErr *helpers.DecodeError
	_, err = stubSource(nil, nil).Fetch(context.Background(), "MSFT")
	require.ErrorAs(t, err, &decodeErr)

	_, err = stubSource(&finance.Quote{Symbol: "MSFT"}, nil).Fetch(context.Background(), "MSFT")
	require.ErrorAs(t, err, &decodeErr)
}

func TestFetch_CancelledContext(t *testing.T) {
	t.Parallel()

	called := false
	s := NewSource(nil)
	s.get = func(string) (*finance.Quote, error) {
		called = true
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, "MSFT")

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}
