// Package chartdata implements the market-data acquisition and chart
// synthesis engine behind per-trade candlestick charts: a provider cascade
// over broker and market data sources, two independent caches, and a
// deterministic synthetic fallback so a chart always has bars to render.
package chartdata

import (
	"time"

	"github.com/tradelens/chartdata/internal/types"
)

// windowPadding extends the fetch window on both sides of the trade so the
// chart shows context around the entry and exit markers.
const windowPadding = 6 * time.Hour

// defaultExitClock is assumed when a trade has no exit time: end of the same
// day.
const defaultExitClock = "23:59:00"

var clockLayouts = []string{"15:04:05", "15:04"}

// AlignTrade derives the UTC entry/exit instants and the padded fetch window
// from a trade record, independent of any provider.
//
// The entry instant defaults to midnight when the entry time is absent. When
// the exit time's minute-of-day is strictly less than the entry's, the trade
// spans past midnight and the exit date advances by one calendar day before
// the instant is recomputed.
func AlignTrade(trade types.Trade) types.FetchWindow {
	date := trade.Date.UTC()

	entryClock := parseClock(trade.EntryTime.TakeOr(""), "00:00:00")
	exitClock := parseClock(trade.ExitTime.TakeOr(""), defaultExitClock)

	entry := atClock(date, entryClock)

	exitDate := date
	if exitClock.minuteOfDay() < entryClock.minuteOfDay() {
		exitDate = exitDate.AddDate(0, 0, 1)
	}

	exit := atClock(exitDate, exitClock)

	start := entry.Add(-windowPadding)
	end := exit.Add(windowPadding)

	return types.FetchWindow{
		Symbol:         trade.Symbol,
		StartDate:      start.Format(types.DateOnly),
		EndDate:        end.Format(types.DateOnly),
		Interval:       types.IntervalForTradeDuration(exit.Sub(entry)),
		EntryTimestamp: entry.Unix(),
		ExitTimestamp:  exit.Unix(),
	}
}

// FindNearestBar returns the single bar whose time is closest by absolute
// difference to the target timestamp, used to place entry/exit markers on a
// candle that actually exists in the rendered series. Of equally close bars
// the earliest wins. ok is false for an empty sequence.
func FindNearestBar(bars []types.Bar, target int64) (types.Bar, bool) {
	if len(bars) == 0 {
		return types.Bar{}, false
	}

	nearest := bars[0]
	best := absDiff(bars[0].Time, target)

	for _, b := range bars[1:] {
		if d := absDiff(b.Time, target); d < best {
			nearest = b
			best = d
		}
	}

	return nearest, true
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}

	return b - a
}

type clock struct {
	hour, minute, second int
}

func (c clock) minuteOfDay() int {
	return c.hour*60 + c.minute
}

// parseClock reads a wall-clock string, falling back to the given default on
// absence or malformed input. It never fails.
func parseClock(raw, fallback string) clock {
	if raw == "" {
		raw = fallback
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return clock{hour: t.Hour(), minute: t.Minute(), second: t.Second()}
		}
	}

	return parseClock(fallback, "00:00:00")
}

func atClock(date time.Time, c clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.hour, c.minute, c.second, 0, time.UTC)
}
