package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Trade is the read-only trade record the engine derives a chart window from.
// Entry and exit prices are always present. Clock times are wall-clock values
// without a timezone and are interpreted as UTC; an absent entry time means
// midnight and an absent exit time means 23:59:00 on the same day.
type Trade struct {
	ID         string
	Symbol     string
	Date       time.Time
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	// EntryTime and ExitTime are "HH:MM:SS" (or "HH:MM") strings.
	EntryTime optional.Option[string]
	ExitTime  optional.Option[string]
	// MetaapiAccountID links the trade to a synchronized broker account.
	// Presence triggers the broker-source attempt first in the cascade.
	MetaapiAccountID optional.Option[string]
	Region           string
}

// FetchWindow is the ephemeral value derived from a trade per request.
// StartDate and EndDate are the padded window expressed as calendar dates for
// providers that require date-level range parameters. It is never persisted.
type FetchWindow struct {
	Symbol    string
	StartDate string
	EndDate   string
	Interval  Interval
	// EntryTimestamp and ExitTimestamp are the unpadded trade instants in
	// UTC seconds, EntryTimestamp <= ExitTimestamp after overnight-span
	// correction.
	EntryTimestamp int64
	ExitTimestamp  int64
}

// DateOnly is the calendar date layout used across the engine.
const DateOnly = "2006-01-02"

// DateRangeUnix converts a calendar date range into UTC instants spanning the
// whole days: start at midnight, end at 23:59:59.
func DateRangeUnix(startDate, endDate string) (int64, int64, error) {
	start, err := time.Parse(DateOnly, startDate)
	if err != nil {
		return 0, 0, err
	}

	end, err := time.Parse(DateOnly, endDate)
	if err != nil {
		return 0, 0, err
	}

	return start.Unix(), end.Add(24*time.Hour - time.Second).Unix(), nil
}
