package cache

import (
	"fmt"

	"github.com/tradelens/chartdata/internal/types"
)

// The two cache tiers are independent components with different storage
// substrates and lifetimes, but they key entries identically: one derivation
// per (symbol, date range, interval) tuple.

// DefaultClientPrefix namespaces client-side cache keys.
const DefaultClientPrefix = "ohlc_"

// ServerKey derives the server-tier cache key.
func ServerKey(symbol, startDate, endDate string, interval types.Interval) string {
	return fmt.Sprintf("ohlc-%s-%s-%s-%s", symbol, startDate, endDate, interval)
}

// ClientKey derives the client-tier cache key.
func ClientKey(prefix, symbol, startDate, endDate string, interval types.Interval) string {
	return fmt.Sprintf("%s%s_%s_%s_%s", prefix, symbol, startDate, endDate, interval)
}
