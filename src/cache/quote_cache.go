package cache

import (
	"sort"
	"sync"

	"quote-server/src/interfaces"
	"quote-server/src/models"

	"github.com/cespare/xxhash/v2"
)

const DefaultShardCount = 32

var _ interfaces.IQuoteStore = (*QuoteCache)(nil)

// -----------------------------------------------------------------------------
// QuoteCache holds the latest quote per symbol.
//
// Symbols are spread over independently locked shards. Every lock is held for
// one key's worth of work (or one shard scan when listing), so a write never
// blocks readers of keys living in other shards, and never blocks anything for
// longer than a single map assignment.
// -----------------------------------------------------------------------------

type QuoteCache struct {
	shards []*shard
}

type shard struct {
	mu     sync.RWMutex
	quotes map[string]models.MQuote
}

// -----------------------------------------------------------------------------

// NewQuoteCache creates an empty cache. shardCount <= 0 selects DefaultShardCount.
func NewQuoteCache(shardCount int) *QuoteCache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	c := &QuoteCache{shards: make([]*shard, shardCount)}
	for i := range c.shards {
		c.shards[i] = &shard{quotes: make(map[string]models.MQuote)}
	}
	return c
}

// -----------------------------------------------------------------------------

func (c *QuoteCache) shardFor(symbol string) *shard {
	return c.shards[xxhash.Sum64String(symbol)%uint64(len(c.shards))]
}

// -----------------------------------------------------------------------------

// Get returns the most recently written quote for symbol.
func (c *QuoteCache) Get(symbol string) (models.MQuote, bool) {
	s := c.shardFor(symbol)
	s.mu.RLock()
	q, ok := s.quotes[symbol]
	s.mu.RUnlock()
	return q, ok
}

// -----------------------------------------------------------------------------

// Put replaces the entry for symbol.
func (c *QuoteCache) Put(symbol string, quote models.MQuote) {
	s := c.shardFor(symbol)
	s.mu.Lock()
	s.quotes[symbol] = quote
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// ListSymbols returns the cached symbols in ascending order.
func (c *QuoteCache) ListSymbols() []string {
	symbols := make([]string, 0, c.Len())
	for _, s := range c.shards {
		s.mu.RLock()
		for sym := range s.quotes {
			symbols = append(symbols, sym)
		}
		s.mu.RUnlock()
	}
	sort.Strings(symbols)
	return symbols
}

// -----------------------------------------------------------------------------

// Snapshot returns every cached quote ordered by symbol.
func (c *QuoteCache) Snapshot() []models.MQuote {
	quotes := make([]models.MQuote, 0, c.Len())
	for _, s := range c.shards {
		s.mu.RLock()
		for _, q := range s.quotes {
			quotes = append(quotes, q)
		}
		s.mu.RUnlock()
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Symbol < quotes[j].Symbol
	})
	return quotes
}

// -----------------------------------------------------------------------------

func (c *QuoteCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.quotes)
		s.mu.RUnlock()
	}
	return n
}
