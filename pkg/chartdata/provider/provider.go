package provider

import (
	"context"
	"sort"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/errors"
)

// ErrNoData is returned by a provider when the upstream source answered but
// has no candles for the requested window. The cascade treats it the same as
// any other adapter failure: advance to the next provider.
var ErrNoData = errors.New(errors.ErrCodeNoData, "no data available for the requested window")

// Request holds the normalized parameters for a single candle fetch.
type Request struct {
	// Symbol is the raw instrument code as stored on the trade; each
	// provider maps it into its own vocabulary.
	Symbol string
	// StartDate and EndDate are the padded window as calendar dates.
	StartDate string
	EndDate   string
	// From and To are the same window as UTC seconds.
	From     int64
	To       int64
	Interval types.Interval
	// AccountID and Region are only meaningful for the broker source.
	AccountID string
	Region    string
	// EntryTimestamp, ExitTimestamp and the trade prices are only meaningful
	// for the synthetic source, which interpolates between them.
	EntryTimestamp int64
	ExitTimestamp  int64
	EntryPrice     float64
	ExitPrice      float64
}

// Provider produces an ordered bar sequence for a request, or an explicit
// no-data signal. The four data sources (broker, two market-data APIs,
// synthetic) all implement this one capability interface so the cascade can
// iterate a priority-ordered list instead of branching on source identity.
type Provider interface {
	// Name identifies the source for response metadata and cache decisions.
	Name() types.Source
	// Fetch returns bars in strictly ascending time order with no duplicate
	// timestamps. An empty result must be reported as ErrNoData.
	Fetch(ctx context.Context, req Request) ([]types.Bar, error)
}

// normalizeBars enforces the per-adapter sequence contract: sort ascending by
// time and deduplicate by timestamp keeping the first occurrence. Adapters
// call this on every decoded payload before returning.
func normalizeBars(bars []types.Bar) []types.Bar {
	if len(bars) == 0 {
		return bars
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time < bars[j].Time
	})

	out := bars[:1]
	for _, b := range bars[1:] {
		if b.Time == out[len(out)-1].Time {
			continue
		}

		out = append(out, b)
	}

	return out
}
