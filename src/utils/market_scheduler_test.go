package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMICForSymbol(t *testing.T) {
	t.Parallel()

	require.Equal(t, "xnys", MICForSymbol("AAPL"))
	require.Equal(t, "xlon", MICForSymbol("VOD.L"))
	require.Equal(t, "xtks", MICForSymbol("7203.T"))
	require.Equal(t, "xnys", MICForSymbol("BRK.B"))
	require.Equal(t, "xnys", MICForSymbol(".L"))
}

func TestFallbackCalendar_Session(t *testing.T) {
	t.Parallel()

	cal := NewFallbackCalendar("xnys")
	ny := cal.Timezone

	// Wednesday 2024-03-06
	require.True(t, cal.IsOpenAt(time.Date(2024, 3, 6, 9, 30, 0, 0, ny)))
	require.True(t, cal.IsOpenAt(time.Date(2024, 3, 6, 15, 59, 0, 0, ny)))
	require.False(t, cal.IsOpenAt(time.Date(2024, 3, 6, 9, 29, 0, 0, ny)))
	require.False(t, cal.IsOpenAt(time.Date(2024, 3, 6, 16, 0, 0, 0, ny)))

	// Saturday
	require.False(t, cal.IsOpenAt(time.Date(2024, 3, 9, 11, 0, 0, 0, ny)))
}

func TestMarketScheduler_AnyMarketOpen(t *testing.T) {
	t.Parallel()

	fallback := NewFallbackCalendar("xnys")
	ms := &MarketScheduler{Calendars: []*TradingCalendar{fallback}}

	ms.now = func() time.Time { return time.Date(2024, 3, 6, 11, 0, 0, 0, fallback.Timezone) }
	require.True(t, ms.AnyMarketOpen())

	ms.now = func() time.Time { return time.Date(2024, 3, 10, 11, 0, 0, 0, fallback.Timezone) }
	require.False(t, ms.AnyMarketOpen())
}

func TestNewMarketScheduler_OneCalendarPerExchange(t *testing.T) {
	t.Parallel()

	ms := NewMarketScheduler([]string{"AAPL", "MSFT", "VOD.L"}, nil)

	require.Len(t, ms.Calendars, 2)

	// empty scheduler never reports an open market
	require.False(t, (&MarketScheduler{now: time.Now}).AnyMarketOpen())
}
