package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quote-server/src/config"
	"quote-server/src/handler"
	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/refresher"
	"quote-server/src/workerpool"

	"github.com/gin-gonic/gin"
)

const contentTypeJSON = "application/json"

// RefreshStatus is the part of the refresher the health endpoint reports on.
type RefreshStatus interface {
	Stats() refresher.Stats
	Symbols() []string
}

// -----------------------------------------------------------------------------
// QuoteServer
// -----------------------------------------------------------------------------

type QuoteServer struct {
	Config *config.Config
	Logger *logger.Logger
	Hub    *Hub

	store     interfaces.IQuoteStore
	pool      *workerpool.WorkerPool
	refresher RefreshStatus

	engine     *gin.Engine
	httpServer *http.Server
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewQuoteServer builds the router. status may be nil.
func NewQuoteServer(
	cfg *config.Config,
	store interfaces.IQuoteStore,
	pool *workerpool.WorkerPool,
	status RefreshStatus,
	log *logger.Logger,
) *QuoteServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &QuoteServer{
		Config:    cfg,
		Logger:    log,
		Hub:       NewHub(store.Snapshot, log.Named("hub")),
		store:     store,
		pool:      pool,
		refresher: status,
		engine:    gin.New(),
	}

	// Only the two quote routes are valid; no redirects to near matches.
	s.engine.RedirectTrailingSlash = false
	s.engine.RedirectFixedPath = false
	s.engine.Use(requestLogger(log), gin.Recovery())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *QuoteServer) setupRoutes() {
	api := s.engine.Group("/api/v1", s.admission(), s.exactTarget())
	api.GET("/quotes", s.listQuotes)
	api.GET("/quotes/:symbol", s.getQuote)

	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/ws", s.Hub.ServeWS)

	s.engine.NoRoute(s.admission(), s.unknown)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for httptest.
func (s *QuoteServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the stream hub and serves HTTP until Shutdown is called.
func (s *QuoteServer) Start(ctx context.Context) error {
	go s.Hub.Run(ctx)

	s.Logger.Info("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *QuoteServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *QuoteServer) listQuotes(c *gin.Context) {
	s.respond(c, handler.Handle(handler.Request{Op: handler.OpListSymbols}, s.store))
}

// -----------------------------------------------------------------------------

func (s *QuoteServer) getQuote(c *gin.Context) {
	req := handler.Request{Op: handler.OpGetQuote, Symbol: c.Param("symbol")}
	s.respond(c, handler.Handle(req, s.store))
}

// -----------------------------------------------------------------------------

func (s *QuoteServer) unknown(c *gin.Context) {
	s.respond(c, handler.Handle(handler.Request{Op: handler.OpUnknown}, s.store))
}

// -----------------------------------------------------------------------------

func (s *QuoteServer) respond(c *gin.Context, resp handler.Response) {
	code := http.StatusOK
	if resp.Status != handler.StatusOK {
		code = http.StatusNotFound
	}
	body, err := resp.Body()
	if err != nil {
		s.Logger.Error("Failed to render response for %s: %v", c.Request.URL.Path, err)
		c.Data(http.StatusInternalServerError, contentTypeJSON, nil)
		return
	}
	c.Data(code, contentTypeJSON, body)
}

// -----------------------------------------------------------------------------

func (s *QuoteServer) getHealth(c *gin.Context) {
	cached := s.store.Snapshot()

	body := gin.H{
		"status":      "ok",
		"cached":      len(cached),
		"connections": s.Hub.Connections(),
		"pool":        s.pool.Stats(),
	}

	if s.refresher != nil {
		present := make(map[string]bool, len(cached))
		for _, q := range cached {
			present[q.Symbol] = true
		}
		tracked := s.refresher.Symbols()
		pending := make([]string, 0)
		for _, sym := range tracked {
			if !present[sym] {
				pending = append(pending, sym)
			}
		}

		stats := s.refresher.Stats()
		body["tracked"] = len(tracked)
		body["pending"] = pending
		body["cycles"] = stats.Cycles
		body["last_cycle"] = stats.Last.Finished
	}

	c.JSON(http.StatusOK, body)
}
