package refresher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quote-server/src/interfaces"
	"quote-server/src/logger"
	"quote-server/src/models"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultInterval     = 600 * time.Second
	DefaultFetchTimeout = 15 * time.Second

	cycleKey = "cycle"
)

// CycleReport summarizes one pass over the tracked symbols.
type CycleReport struct {
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Succeeded []string  `json:"succeeded"`
	Failed    []string  `json:"failed"`
	Skipped   bool      `json:"skipped"`
}

// Stats exposes the refresher progress to the health endpoint.
type Stats struct {
	Cycles uint64      `json:"cycles"`
	Last   CycleReport `json:"last_cycle"`
}

// -----------------------------------------------------------------------------
// Refresher keeps the quote store populated.
//
// Cycles are serialized: Run and any number of RefreshNow callers share the
// same singleflight key, so at most one cycle is in flight and every write for
// a symbol carries a newer observation than the one it replaces.
//
// A cycle runs on the refresher's own context. Callers can stop waiting but
// cannot cancel it; only Stop, or cancellation of Run's context, does.
// -----------------------------------------------------------------------------

type Refresher struct {
	symbols      []string
	interval     time.Duration
	fetchTimeout time.Duration

	source   interfaces.IPriceSource
	store    interfaces.IQuoteWriter
	listener interfaces.IQuoteListener
	clock    interfaces.IMarketClock

	group singleflight.Group

	lifetime context.Context
	stop     context.CancelFunc

	mu     sync.RWMutex
	cycles uint64
	last   CycleReport

	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewRefresher creates a refresher over symbols. Non-positive durations fall
// back to the defaults.
func NewRefresher(
	symbols []string,
	interval, fetchTimeout time.Duration,
	source interfaces.IPriceSource,
	store interfaces.IQuoteWriter,
	log *logger.Logger,
) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	tracked := make([]string, len(symbols))
	copy(tracked, symbols)

	lifetime, stop := context.WithCancel(context.Background())

	return &Refresher{
		lifetime:     lifetime,
		stop:         stop,
		symbols:      tracked,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		source:       source,
		store:        store,
		Logger:       log,
	}
}

// -----------------------------------------------------------------------------

// SetListener registers the component notified after every successful write.
// Must be called before Run.
func (r *Refresher) SetListener(l interfaces.IQuoteListener) {
	r.listener = l
}

// -----------------------------------------------------------------------------

// SetMarketClock enables the market-hours gate. Must be called before Run.
func (r *Refresher) SetMarketClock(c interfaces.IMarketClock) {
	r.clock = c
}

// -----------------------------------------------------------------------------

// Symbols returns the tracked symbol list.
func (r *Refresher) Symbols() []string {
	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// -----------------------------------------------------------------------------

// Run executes cycles until ctx is cancelled, then stops the refresher so an
// in-flight cycle started by any caller ends too. The interval is measured
// from the end of one cycle to the start of the next.
func (r *Refresher) Run(ctx context.Context) {
	r.Logger.Info("Refresher started: %d symbols, interval %s, source %s",
		len(r.symbols), r.interval, r.source.Name())

	release := context.AfterFunc(ctx, r.stop)
	defer release()

	for ctx.Err() == nil {
		report, err := r.RefreshNow(ctx)
		if err != nil {
			break
		}
		if !report.Skipped {
			r.Logger.Info("Cycle finished in %s: %d ok, %d failed",
				report.Finished.Sub(report.Started), len(report.Succeeded), len(report.Failed))
		}

		// Interruptible sleep
		select {
		case <-ctx.Done():
		case <-time.After(r.interval):
		}
	}

	r.Logger.Info("Refresher stopped")
}

// -----------------------------------------------------------------------------

// RefreshNow runs one cycle and returns its report. A call made while a cycle
// is already running waits for that cycle and returns its report instead of
// starting a second one. If ctx ends first, RefreshNow returns ctx.Err() and
// the cycle carries on for the other callers.
func (r *Refresher) RefreshNow(ctx context.Context) (CycleReport, error) {
	ch := r.group.DoChan(cycleKey, func() (interface{}, error) {
		return r.cycle(r.lifetime), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.Logger.Debug("Joined in-flight cycle")
		}
		return res.Val.(CycleReport), nil
	case <-ctx.Done():
		return CycleReport{}, ctx.Err()
	}
}

// -----------------------------------------------------------------------------

// Stop aborts the in-flight cycle, if any. Later cycles fail every symbol
// immediately.
func (r *Refresher) Stop() {
	r.stop()
}

// -----------------------------------------------------------------------------

// Stats returns the completed cycle count and the last report.
func (r *Refresher) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Cycles: r.cycles, Last: r.last}
}

// -----------------------------------------------------------------------------

func (r *Refresher) cycle(ctx context.Context) CycleReport {
	report := CycleReport{
		Started:   time.Now(),
		Succeeded: make([]string, 0, len(r.symbols)),
		Failed:    make([]string, 0),
	}

	if r.clock != nil && !r.clock.AnyMarketOpen() {
		r.Logger.Info("All markets are closed. Skipping cycle")
		report.Skipped = true
		report.Finished = time.Now()
		r.record(report)
		return report
	}

	for i, symbol := range r.symbols {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, r.symbols[i:]...)
			r.Logger.Warning("Cycle interrupted, %d symbols not fetched", len(r.symbols)-i)
			break
		}

		quote, err := r.fetch(ctx, symbol)
		if err != nil {
			r.Logger.Warning("Failed to refresh %s: %v", symbol, err)
			report.Failed = append(report.Failed, symbol)
			continue
		}

		r.store.Put(symbol, quote)
		if r.listener != nil {
			r.listener.Publish(quote)
		}
		report.Succeeded = append(report.Succeeded, symbol)
	}

	report.Finished = time.Now()
	r.record(report)
	return report
}

// -----------------------------------------------------------------------------

type fetchResult struct {
	quote models.MQuote
	err   error
}

// fetch calls the source with a per-symbol deadline. A source that ignores
// its context, or panics, still yields an error here.
func (r *Refresher) fetch(ctx context.Context, symbol string) (models.MQuote, error) {
	fctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetchResult{err: fmt.Errorf("source panicked: %v", p)}
			}
		}()
		q, err := r.source.Fetch(fctx, symbol)
		done <- fetchResult{quote: q, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil && res.quote.Symbol == "" {
			res.quote.Symbol = symbol
		}
		return res.quote, res.err
	case <-fctx.Done():
		if errors.Is(fctx.Err(), context.DeadlineExceeded) {
			return models.MQuote{}, fmt.Errorf("timed out after %s", r.fetchTimeout)
		}
		return models.MQuote{}, fctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (r *Refresher) record(report CycleReport) {
	r.mu.Lock()
	r.cycles++
	r.last = report
	r.mu.Unlock()
}
