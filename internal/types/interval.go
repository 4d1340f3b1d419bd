package types

import "time"

// Interval is a candle granularity token accepted by the engine.
type Interval string

const (
	IntervalOneMinute      Interval = "1min"
	IntervalFiveMinutes    Interval = "5min"
	IntervalFifteenMinutes Interval = "15min"
	IntervalThirtyMinutes  Interval = "30min"
	IntervalOneHour        Interval = "1h"
	IntervalTwoHours       Interval = "2h"
	IntervalFourHours      Interval = "4h"
	IntervalOneDay         Interval = "1day"
)

// DefaultInterval is the fallback granularity for unknown interval tokens.
const DefaultInterval = IntervalFiveMinutes

var supportedIntervals = map[Interval]time.Duration{
	IntervalOneMinute:      time.Minute,
	IntervalFiveMinutes:    5 * time.Minute,
	IntervalFifteenMinutes: 15 * time.Minute,
	IntervalThirtyMinutes:  30 * time.Minute,
	IntervalOneHour:        time.Hour,
	IntervalTwoHours:       2 * time.Hour,
	IntervalFourHours:      4 * time.Hour,
	IntervalOneDay:         24 * time.Hour,
}

// ParseInterval normalizes a raw interval token. Tokens outside the supported
// set silently fall back to DefaultInterval; this never fails.
func ParseInterval(raw string) Interval {
	iv := Interval(raw)
	if _, ok := supportedIntervals[iv]; !ok {
		return DefaultInterval
	}

	return iv
}

// IsValid reports whether the interval is one of the supported tokens.
func (i Interval) IsValid() bool {
	_, ok := supportedIntervals[i]

	return ok
}

// Duration returns the bucket width of the interval.
func (i Interval) Duration() time.Duration {
	if d, ok := supportedIntervals[i]; ok {
		return d
	}

	return supportedIntervals[DefaultInterval]
}

// IntervalForTradeDuration selects a candle granularity from a trade's
// lifetime so short scalps get fine granularity and long swing trades don't
// request an unbounded number of candles.
func IntervalForTradeDuration(d time.Duration) Interval {
	minutes := d.Minutes()

	switch {
	case minutes <= 30:
		return IntervalOneMinute
	case minutes <= 120:
		return IntervalFiveMinutes
	case minutes <= 480:
		return IntervalFifteenMinutes
	case minutes <= 1440:
		return IntervalThirtyMinutes
	default:
		return IntervalOneHour
	}
}
