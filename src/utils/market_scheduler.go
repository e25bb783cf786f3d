package utils

import (
	"time"

	"quote-server/src/interfaces"
	"quote-server/src/logger"
)

var _ interfaces.IMarketClock = (*MarketScheduler)(nil)

// MarketScheduler gates refresh cycles on the sessions of the exchanges the
// tracked symbols trade on.
type MarketScheduler struct {
	Calendars []*TradingCalendar
	Logger    *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

// NewMarketScheduler loads one calendar per distinct exchange among symbols.
func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.NewNopLogger()
	}

	seen := make(map[string]bool)
	ms := &MarketScheduler{Logger: l, now: time.Now}
	for _, symbol := range symbols {
		mic := MICForSymbol(symbol)
		if seen[mic] {
			continue
		}
		seen[mic] = true
		ms.Calendars = append(ms.Calendars, LoadCalendar(mic))
	}

	ms.Logger.Info("Mapped %d symbols to %d exchange calendars", len(symbols), len(ms.Calendars))
	return ms
}

// -----------------------------------------------------------------------------

// AnyMarketOpen reports whether at least one tracked exchange is trading.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.now()
	for _, cal := range ms.Calendars {
		if cal.IsOpenAt(now) {
			return true
		}
	}
	return false
}
