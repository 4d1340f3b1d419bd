package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/errors"
)

// metaapiBaseURLPattern is the regional market-data endpoint of the broker
// sync service.
const metaapiBaseURLPattern = "https://mt-market-data-client-api-v1.%s.agiliumtrade.ai"

// DefaultMetaapiRegion is used when a request carries an account id without a
// region.
const DefaultMetaapiRegion = "new-york"

// metaapiCandleLimit caps a single historical candle page.
const metaapiCandleLimit = 1000

// MetaapiProvider fetches candles for a synchronized broker account. It is
// only consulted when the request carries an account id, and the cascade
// time-boxes the call so a slow account integration cannot stall the chart
// render.
type MetaapiProvider struct {
	client *resty.Client
	// baseURL overrides the regional URL pattern; used in tests.
	baseURL string
	token   string
}

// NewMetaapiProvider creates a broker-source provider. An empty baseURL
// resolves the regional endpoint per request.
func NewMetaapiProvider(baseURL, token string) *MetaapiProvider {
	return &MetaapiProvider{
		client:  resty.New().SetTimeout(30 * time.Second),
		baseURL: baseURL,
		token:   token,
	}
}

// Name implements Provider.
func (p *MetaapiProvider) Name() types.Source {
	return types.SourceMetaapi
}

// Fetch implements Provider.
func (p *MetaapiProvider) Fetch(ctx context.Context, req Request) ([]types.Bar, error) {
	if p.token == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "metaapi token is not configured")
	}

	if req.AccountID == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "metaapi account id is required")
	}

	region := req.Region
	if region == "" {
		region = DefaultMetaapiRegion
	}

	baseURL := p.baseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf(metaapiBaseURLPattern, region)
	}

	url := fmt.Sprintf("%s/users/current/accounts/%s/historical-market-data/symbols/%s/timeframes/%s/candles",
		baseURL, req.AccountID, metaapiSymbol(req.Symbol), metaapiTimeframe(req.Interval))

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("auth-token", p.token).
		SetQueryParams(map[string]string{
			"startTime": time.Unix(req.From, 0).UTC().Format(time.RFC3339),
			"limit":     strconv.Itoa(metaapiCandleLimit),
		}).
		Get(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFetchFailed, "metaapi request failed", err)
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeProviderStatus, "metaapi returned status %d", resp.StatusCode())
	}

	parsed := gjson.ParseBytes(resp.Body())
	if !parsed.IsArray() {
		return nil, errors.New(errors.ErrCodeProviderParseFailed, "metaapi returned a non-array payload")
	}

	candles := parsed.Array()
	bars := make([]types.Bar, 0, len(candles))

	for _, c := range candles {
		ts, ok := parseMetaapiTime(c.Get("time").String())
		if !ok {
			continue
		}

		// Bars past the padded window belong to a later page; drop them
		// rather than stretching the chart.
		if req.To > 0 && ts > req.To {
			continue
		}

		bars = append(bars, types.Bar{
			Time:  ts,
			Open:  c.Get("open").Float(),
			High:  c.Get("high").Float(),
			Low:   c.Get("low").Float(),
			Close: c.Get("close").Float(),
		})
	}

	bars = normalizeBars(bars)
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	return bars, nil
}

func parseMetaapiTime(raw string) (int64, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Unix(), true
		}
	}

	return 0, false
}
