package provider

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/errors"
)

const defaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// finnhubRequestsPerSecond keeps the free tier's 60 requests/minute budget.
const finnhubRequestsPerSecond = 1

// FinnhubProvider fetches forex candles from Finnhub's REST API. It is the
// primary market source in the cascade.
type FinnhubProvider struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
}

// finnhubCandleResponse is the column-oriented candle payload. The "s" field
// is "ok" or "no_data".
type finnhubCandleResponse struct {
	Status string    `json:"s"`
	Times  []int64   `json:"t"`
	Opens  []float64 `json:"o"`
	Highs  []float64 `json:"h"`
	Lows   []float64 `json:"l"`
	Closes []float64 `json:"c"`
}

// NewFinnhubProvider creates a Finnhub provider. An empty baseURL selects the
// public API endpoint; tests point it at a local server.
func NewFinnhubProvider(baseURL, apiKey string) *FinnhubProvider {
	if baseURL == "" {
		baseURL = defaultFinnhubBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)

	return &FinnhubProvider{
		client:  client,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(finnhubRequestsPerSecond), 1),
	}
}

// Name implements Provider.
func (p *FinnhubProvider) Name() types.Source {
	return types.SourceFinnhub
}

// Fetch implements Provider.
func (p *FinnhubProvider) Fetch(ctx context.Context, req Request) ([]types.Bar, error) {
	if p.apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "finnhub API key is not configured")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFetchFailed, "finnhub rate limit wait interrupted", err)
	}

	var payload finnhubCandleResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     finnhubSymbol(req.Symbol),
			"resolution": finnhubResolution(req.Interval),
			"from":       strconv.FormatInt(req.From, 10),
			"to":         strconv.FormatInt(req.To, 10),
			"token":      p.apiKey,
		}).
		SetResult(&payload).
		Get("/forex/candle")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFetchFailed, "finnhub request failed", err)
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeProviderStatus, "finnhub returned status %d", resp.StatusCode())
	}

	if payload.Status != "ok" || len(payload.Times) == 0 {
		return nil, ErrNoData
	}

	bars := make([]types.Bar, 0, len(payload.Times))
	for i, t := range payload.Times {
		bars = append(bars, types.Bar{
			Time:  t,
			Open:  columnAt(payload.Opens, i),
			High:  columnAt(payload.Highs, i),
			Low:   columnAt(payload.Lows, i),
			Close: columnAt(payload.Closes, i),
		})
	}

	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	return bars, nil
}

// columnAt reads one value from a column array, filling 0 when the provider
// returned mismatched column lengths.
func columnAt(col []float64, i int) float64 {
	if i < len(col) {
		return col[i]
	}

	return 0
}
