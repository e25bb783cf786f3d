package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quote-server/src/cache"
	"quote-server/src/config"
	"quote-server/src/logger"
	"quote-server/src/models"
	"quote-server/src/refresher"
	"quote-server/src/workerpool"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var t1 = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

type fakeStatus struct {
	symbols []string
	stats   refresher.Stats
}

func (f fakeStatus) Stats() refresher.Stats { return f.stats }
func (f fakeStatus) Symbols() []string      { return f.symbols }

// slowStore wraps a cache and records how many Gets run at once.
type slowStore struct {
	*cache.QuoteCache
	delay   time.Duration
	running int64
	peak    int64
	panicOn string
}

func (s *slowStore) Get(symbol string) (models.MQuote, bool) {
	if symbol == s.panicOn {
		panic("store exploded")
	}
	n := atomic.AddInt64(&s.running, 1)
	for {
		old := atomic.LoadInt64(&s.peak)
		if n <= old || atomic.CompareAndSwapInt64(&s.peak, old, n) {
			break
		}
	}
	time.Sleep(s.delay)
	atomic.AddInt64(&s.running, -1)
	return s.QuoteCache.Get(symbol)
}

func newTestServer(t *testing.T, workers int, store *cache.QuoteCache) *QuoteServer {
	pool, err := workerpool.NewWorkerPool(workers, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Stop)

	cfg := &config.Config{MConfig: &models.MConfig{Host: "127.0.0.1", Port: 7878, LogLevel: "INFO"}}
	return NewQuoteServer(cfg, store, pool, fakeStatus{symbols: []string{"AAA", "BBB"}}, logger.NewNopLogger())
}

func do(s *QuoteServer, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// -----------------------------------------------------------------------------

func TestQuoteRoutes(t *testing.T) {
	t.Parallel()

	store := cache.NewQuoteCache(0)
	store.Put("AAA", models.NewQuote("AAA", 10.0, t1))
	s := newTestServer(t, 2, store)

	tests := []struct {
		name   string
		method string
		path   string
		code   int
		body   string
	}{
		{"list", http.MethodGet, "/api/v1/quotes", 200, `["AAA"]`},
		{"get present", http.MethodGet, "/api/v1/quotes/AAA", 200, `{"timestamp":"2024-03-01T14:30:00Z","symbol":"AAA","value":10}`},
		{"tracked not fetched", http.MethodGet, "/api/v1/quotes/BBB", 404, ""},
		{"untracked", http.MethodGet, "/api/v1/quotes/ZZZ", 404, ""},
		{"trailing slash", http.MethodGet, "/api/v1/quotes/", 404, ""},
		{"nested path", http.MethodGet, "/api/v1/quotes/AAA/history", 404, ""},
		{"list with query", http.MethodGet, "/api/v1/quotes?x=1", 404, ""},
		{"get with query", http.MethodGet, "/api/v1/quotes/AAA?fresh=true", 404, ""},
		{"empty query", http.MethodGet, "/api/v1/quotes?", 404, ""},
		{"wrong method", http.MethodPost, "/api/v1/quotes", 404, ""},
		{"unknown path", http.MethodGet, "/quotes", 404, ""},
		{"root", http.MethodGet, "/", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.path)

			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.body, rec.Body.String())
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestNewQuoteServer_ListensOnConfiguredAddr(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1, cache.NewQuoteCache(0))

	require.Equal(t, s.Config.HTTPAddr(), s.httpServer.Addr)
}

func TestGetQuote_NonFiniteValueIsServerError(t *testing.T) {
	t.Parallel()

	store := cache.NewQuoteCache(0)
	store.Put("AAA", models.NewQuote("AAA", math.Inf(1), t1))
	s := newTestServer(t, 1, store)

	rec := do(s, http.MethodGet, "/api/v1/quotes/AAA")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestListQuotes_Empty(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, 1, cache.NewQuoteCache(0))

	rec := do(s, http.MethodGet, "/api/v1/quotes")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", rec.Body.String())
}

func TestAdmission_BoundsConcurrentHandlers(t *testing.T) {
	t.Parallel()

	// Arrange
	const workers = 2
	store := &slowStore{QuoteCache: cache.NewQuoteCache(0), delay: 10 * time.Millisecond}
	store.Put("AAA", models.NewQuote("AAA", 1, t1))

	pool, err := workerpool.NewWorkerPool(workers, nil)
	require.NoError(t, err)
	defer pool.Stop()
	s := NewQuoteServer(&config.Config{MConfig: &models.MConfig{}}, store, pool, nil, logger.NewNopLogger())

	// Act
	var wg sync.WaitGroup
	codes := make([]int, 20)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = do(s, http.MethodGet, "/api/v1/quotes/AAA").Code
		}(i)
	}
	wg.Wait()

	// Assert
	for _, code := range codes {
		require.Equal(t, http.StatusOK, code)
	}
	require.LessOrEqual(t, atomic.LoadInt64(&store.peak), int64(workers))
	require.Equal(t, uint64(len(codes)), pool.Stats().Completed)
}

func TestAdmission_PanicIsContained(t *testing.T) {
	t.Parallel()

	store := &slowStore{QuoteCache: cache.NewQuoteCache(0), panicOn: "BOOM"}
	store.Put("AAA", models.NewQuote("AAA", 1, t1))

	pool, err := workerpool.NewWorkerPool(1, nil)
	require.NoError(t, err)
	defer pool.Stop()
	s := NewQuoteServer(&config.Config{MConfig: &models.MConfig{}}, store, pool, nil, logger.NewNopLogger())

	rec := do(s, http.MethodGet, "/api/v1/quotes/BOOM")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Body.String())

	// the single worker survived
	rec = do(s, http.MethodGet, "/api/v1/quotes/AAA")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(1), pool.Stats().Panicked)
}

func TestAdmission_StoppedPool(t *testing.T) {
	t.Parallel()

	pool, err := workerpool.NewWorkerPool(1, nil)
	require.NoError(t, err)
	pool.Stop()
	s := NewQuoteServer(&config.Config{MConfig: &models.MConfig{}}, cache.NewQuoteCache(0), pool, nil, logger.NewNopLogger())

	rec := do(s, http.MethodGet, "/api/v1/quotes")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	store := cache.NewQuoteCache(0)
	store.Put("AAA", models.NewQuote("AAA", 10.0, t1))
	s := newTestServer(t, 1, store)

	rec := do(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string   `json:"status"`
		Tracked int      `json:"tracked"`
		Cached  int      `json:"cached"`
		Pending []string `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, 2, body.Tracked)
	require.Equal(t, 1, body.Cached)
	require.Equal(t, []string{"BBB"}, body.Pending)
}

func TestWebSocket_InitialThenUpdate(t *testing.T) {
	t.Parallel()

	// Arrange
	store := cache.NewQuoteCache(0)
	store.Put("AAA", models.NewQuote("AAA", 10.0, t1))
	s := newTestServer(t, 1, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub.Run(ctx)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// Act / Assert
	var initial models.MStreamMessage
	require.NoError(t, conn.ReadJSON(&initial))
	require.Equal(t, models.StreamTypeInitial, initial.Type)
	require.Len(t, initial.Quotes, 1)
	require.Equal(t, "AAA", initial.Quotes[0].Symbol)

	s.Hub.Publish(models.NewQuote("AAA", 12.0, t1.Add(time.Minute)))

	var update models.MStreamMessage
	require.NoError(t, conn.ReadJSON(&update))
	require.Equal(t, models.StreamTypeUpdate, update.Type)
	require.Equal(t, 12.0, update.Quotes[0].Value)
	require.Equal(t, 1, s.Hub.Connections())
}
