package provider

import (
	"strings"

	"github.com/tradelens/chartdata/internal/types"
)

// Symbol and interval normalization: pure mapping functions, one pair per
// provider family. Any instrument code that doesn't match a known shape is
// passed through uppercased, unsplit, as a best-effort fallback; none of
// these functions can fail.

// commodityPrefixes are metal codes that form the base leg of a pair even
// when the total symbol length differs from six characters (e.g. XAUUSD,
// XAGEUR).
var commodityPrefixes = []string{"XAU", "XAG", "XPT", "XPD"}

// cleanSymbol strips separators and uppercases a raw instrument code.
func cleanSymbol(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	for _, sep := range []string{"_", "-", "/"} {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}

	return cleaned
}

// SplitSymbol splits a compact instrument code into its two legs. Six
// character codes split into two 3-character halves; commodity prefixes split
// after the prefix regardless of total length. ok is false when the code has
// no recognizable shape.
func SplitSymbol(raw string) (base, quote string, ok bool) {
	cleaned := cleanSymbol(raw)

	for _, prefix := range commodityPrefixes {
		if strings.HasPrefix(cleaned, prefix) && len(cleaned) > len(prefix) {
			return prefix, cleaned[len(prefix):], true
		}
	}

	if len(cleaned) == 6 {
		return cleaned[:3], cleaned[3:], true
	}

	return cleaned, "", false
}

// finnhubSymbol maps a raw code to Finnhub's OANDA forex vocabulary
// (e.g. EURUSD -> OANDA:EUR_USD).
func finnhubSymbol(raw string) string {
	base, quote, ok := SplitSymbol(raw)
	if !ok {
		return base
	}

	return "OANDA:" + base + "_" + quote
}

// finnhubResolution maps an interval to Finnhub's resolution tokens
// (1, 5, 15, 30, 60, D). Finnhub has no native 2h/4h resolution; those
// collapse to the nearest coarser supported one, daily.
func finnhubResolution(iv types.Interval) string {
	switch iv {
	case types.IntervalOneMinute:
		return "1"
	case types.IntervalFiveMinutes:
		return "5"
	case types.IntervalFifteenMinutes:
		return "15"
	case types.IntervalThirtyMinutes:
		return "30"
	case types.IntervalOneHour:
		return "60"
	case types.IntervalTwoHours, types.IntervalFourHours, types.IntervalOneDay:
		return "D"
	default:
		return "5"
	}
}

// twelveDataSymbol maps a raw code to Twelve Data's slash-separated pair
// vocabulary (e.g. EURUSD -> EUR/USD).
func twelveDataSymbol(raw string) string {
	base, quote, ok := SplitSymbol(raw)
	if !ok {
		return base
	}

	return base + "/" + quote
}

// twelveDataInterval maps an interval to Twelve Data's tokens. All eight
// supported granularities are native there, so this is an identity mapping
// with the usual 5min fallback.
func twelveDataInterval(iv types.Interval) string {
	if iv.IsValid() {
		return string(iv)
	}

	return string(types.DefaultInterval)
}

// metaapiSymbol passes the code through in MetaTrader's compact uppercase
// form (EURUSD, XAUUSD).
func metaapiSymbol(raw string) string {
	return cleanSymbol(raw)
}

// metaapiTimeframe maps an interval to MetaApi timeframe tokens
// (1m, 5m, 15m, 30m, 1h, 2h, 4h, 1d). All eight are native.
func metaapiTimeframe(iv types.Interval) string {
	switch iv {
	case types.IntervalOneMinute:
		return "1m"
	case types.IntervalFiveMinutes:
		return "5m"
	case types.IntervalFifteenMinutes:
		return "15m"
	case types.IntervalThirtyMinutes:
		return "30m"
	case types.IntervalOneHour:
		return "1h"
	case types.IntervalTwoHours:
		return "2h"
	case types.IntervalFourHours:
		return "4h"
	case types.IntervalOneDay:
		return "1d"
	default:
		return "5m"
	}
}
