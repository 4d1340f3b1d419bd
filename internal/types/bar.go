package types

// Source identifies which data source produced a bar sequence.
// A single response never mixes bars from different sources.
type Source string

const (
	SourceMetaapi    Source = "metaapi"
	SourceFinnhub    Source = "finnhub"
	SourceTwelveData Source = "twelvedata"
	SourceSynthetic  Source = "synthetic"
)

// Bar represents one OHLC candle for a fixed time bucket.
type Bar struct {
	// Time is the bucket start in UTC seconds.
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// IsSynthetic reports whether the source is fabricated data rather than
// market data obtained from an upstream provider.
func (s Source) IsSynthetic() bool {
	return s == SourceSynthetic
}

// IsCacheable reports whether results from this source may be written to the
// server-side cache. Broker data is served fresh via its own path and
// synthetic data must never be mistaken for real data later.
func (s Source) IsCacheable() bool {
	return s == SourceFinnhub || s == SourceTwelveData
}
