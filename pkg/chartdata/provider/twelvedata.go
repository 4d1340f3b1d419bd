package provider

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/errors"
)

const defaultTwelveDataBaseURL = "https://api.twelvedata.com"

// TwelveDataProvider fetches candles from Twelve Data's time_series endpoint.
// It is the secondary market source in the cascade.
type TwelveDataProvider struct {
	client *resty.Client
	apiKey string
}

// twelveDataResponse is the row-oriented payload. All numeric fields arrive
// as strings and rows are in reverse chronological order.
type twelveDataResponse struct {
	Status string `json:"status"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
	} `json:"values"`
}

// twelveDataTimeLayouts are the datetime shapes the API returns: intraday
// intervals carry a clock time, the daily interval only a date.
var twelveDataTimeLayouts = []string{"2006-01-02 15:04:05", types.DateOnly}

// NewTwelveDataProvider creates a Twelve Data provider. An empty baseURL
// selects the public API endpoint; tests point it at a local server.
func NewTwelveDataProvider(baseURL, apiKey string) *TwelveDataProvider {
	if baseURL == "" {
		baseURL = defaultTwelveDataBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)

	return &TwelveDataProvider{
		client: client,
		apiKey: apiKey,
	}
}

// Name implements Provider.
func (p *TwelveDataProvider) Name() types.Source {
	return types.SourceTwelveData
}

// Fetch implements Provider.
func (p *TwelveDataProvider) Fetch(ctx context.Context, req Request) ([]types.Bar, error) {
	if p.apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "twelvedata API key is not configured")
	}

	var payload twelveDataResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     twelveDataSymbol(req.Symbol),
			"interval":   twelveDataInterval(req.Interval),
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"timezone":   "UTC",
			"apikey":     p.apiKey,
		}).
		SetResult(&payload).
		Get("/time_series")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFetchFailed, "twelvedata request failed", err)
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeProviderStatus, "twelvedata returned status %d", resp.StatusCode())
	}

	if payload.Status != "ok" || len(payload.Values) == 0 {
		return nil, ErrNoData
	}

	bars := make([]types.Bar, 0, len(payload.Values))

	for _, v := range payload.Values {
		ts, ok := parseTwelveDataTime(v.Datetime)
		if !ok {
			continue
		}

		bars = append(bars, types.Bar{
			Time:  ts,
			Open:  coerceFloat(v.Open),
			High:  coerceFloat(v.High),
			Low:   coerceFloat(v.Low),
			Close: coerceFloat(v.Close),
		})
	}

	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	return bars, nil
}

func parseTwelveDataTime(raw string) (int64, bool) {
	for _, layout := range twelveDataTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Unix(), true
		}
	}

	return 0, false
}

// coerceFloat parses a string-typed number, filling 0 rather than propagating
// a missing or malformed field into the bar shape.
func coerceFloat(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}

	return f
}
