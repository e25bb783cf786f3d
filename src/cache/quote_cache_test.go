package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"quote-server/src/models"

	"github.com/stretchr/testify/require"
)

func TestQuoteCache_GetAbsentBeforeFirstWrite(t *testing.T) {
	t.Parallel()

	c := NewQuoteCache(0)
	c.Put("AAA", models.NewQuote("AAA", 10, time.Now()))

	_, ok := c.Get("BBB")
	require.False(t, ok)

	// symbols are case-sensitive
	_, ok = c.Get("aaa")
	require.False(t, ok)
}

func TestQuoteCache_PutReplaces(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)

	c := NewQuoteCache(4)
	c.Put("AAA", models.NewQuote("AAA", 10, t1))
	c.Put("AAA", models.NewQuote("AAA", 12, t2))

	got, ok := c.Get("AAA")
	require.True(t, ok)
	require.Equal(t, 12.0, got.Value)
	require.True(t, got.Timestamp.Equal(t2))
	require.Equal(t, 1, c.Len())
}

func TestQuoteCache_ListSymbolsSortedAndEmpty(t *testing.T) {
	t.Parallel()

	c := NewQuoteCache(8)
	require.Empty(t, c.ListSymbols())
	require.Empty(t, c.Snapshot())

	now := time.Now()
	for _, s := range []string{"MSFT", "AAPL", "GOOG"} {
		c.Put(s, models.NewQuote(s, 1, now))
	}

	require.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, c.ListSymbols())

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "AAPL", snap[0].Symbol)
	require.Equal(t, "MSFT", snap[2].Symbol)
}

// Readers racing a writer must only ever observe whole quotes.
func TestQuoteCache_PerKeyAtomicity(t *testing.T) {
	t.Parallel()

	c := NewQuoteCache(2)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const writes = 2000

	// value i is always paired with timestamp base+i seconds
	quoteFor := func(i int) models.MQuote {
		return models.NewQuote("AAA", float64(i), base.Add(time.Duration(i)*time.Second))
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, 8)

	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				q, ok := c.Get("AAA")
				if !ok {
					continue
				}
				want := base.Add(time.Duration(int(q.Value)) * time.Second)
				if q.Symbol != "AAA" || !q.Timestamp.Equal(want) {
					errs <- fmt.Errorf("torn read: %+v", q)
					return
				}
			}
		}()
	}

	for i := 1; i <= writes; i++ {
		c.Put("AAA", quoteFor(i))
		// unrelated keys keep other shards busy
		c.Put(fmt.Sprintf("K%d", i%16), quoteFor(i))
	}
	close(stop)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	last, ok := c.Get("AAA")
	require.True(t, ok)
	require.Equal(t, float64(writes), last.Value)
}
