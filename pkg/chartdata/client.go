package chartdata

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/chartdata/cache"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
	"github.com/tradelens/chartdata/pkg/errors"
)

// ClientConfig holds the configuration for the chart-side client.
type ClientConfig struct {
	// BaseURL points at the candle service.
	BaseURL string `validate:"required,url"`
	// CachePath is the client-tier persistent cache database file.
	CachePath string `validate:"required"`
	// CachePrefix namespaces cache keys; empty selects the default.
	CachePrefix string
	// CacheTTL bounds cache entry validity; non-positive selects the default.
	CacheTTL time.Duration
	// RequestTimeout bounds one service call.
	RequestTimeout time.Duration
}

// ChartData is what the chart renderer consumes: an ordered bar sequence plus
// the alignment data needed to place entry/exit markers.
type ChartData struct {
	Bars   []types.Bar
	Source types.Source
	// Cached is true when bars came from the client-tier cache; the source
	// is unknown then but guaranteed to be real market data.
	Cached bool
	Window types.FetchWindow
}

// Synthetic reports whether the series was fabricated rather than fetched.
// The renderer labels such series accordingly.
func (d ChartData) Synthetic() bool {
	return d.Source.IsSynthetic()
}

// ohlcPayload mirrors the service's success response.
type ohlcPayload struct {
	Bars []types.Bar `json:"bars"`
	Meta struct {
		Source types.Source `json:"source"`
	} `json:"meta"`
	Count int `json:"count"`
}

// Client is the calling-client facade: it derives the fetch window from a
// trade, consults the client-tier persistent cache, calls the candle service
// on a miss, and degrades to locally synthesized candles when the service has
// nothing — so the chart never renders empty.
type Client struct {
	http  *resty.Client
	cache *cache.SQLite
	synth *provider.SyntheticGenerator
	log   *logger.Logger
}

// NewClient creates a chart-data client. The persistent cache is opened
// eagerly; call Close when done.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	clientCache, err := cache.NewSQLite(config.CachePath, config.CachePrefix, config.CacheTTL)
	if err != nil {
		return nil, err
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(timeout)

	return &Client{
		http:  httpClient,
		cache: clientCache,
		synth: provider.NewSyntheticGenerator(nil),
		log:   log,
	}, nil
}

// ChartBars produces the bar sequence for a trade's chart. It always returns
// a renderable series: cached or freshly fetched market data when available,
// a synthetic series otherwise.
func (c *Client) ChartBars(ctx context.Context, trade types.Trade) ChartData {
	window := AlignTrade(trade)

	if bars, ok := c.cache.Get(window.Symbol, window.StartDate, window.EndDate, window.Interval); ok {
		return ChartData{Bars: bars, Cached: true, Window: window}
	}

	payload, err := c.fetch(ctx, trade, window)
	if err != nil {
		c.log.Debug("candle service unavailable, synthesizing locally",
			zap.String("symbol", window.Symbol),
			zap.Error(err))

		return c.synthesize(trade, window)
	}

	// Only real market data reaches this point; synthetic series are never
	// written to the cache.
	c.cache.Set(window.Symbol, window.StartDate, window.EndDate, window.Interval, payload.Bars)

	return ChartData{Bars: payload.Bars, Source: payload.Meta.Source, Window: window}
}

// Close releases the persistent cache.
func (c *Client) Close() error {
	return c.cache.Close()
}

func (c *Client) fetch(ctx context.Context, trade types.Trade, window types.FetchWindow) (*ohlcPayload, error) {
	params := map[string]string{
		"symbol":    window.Symbol,
		"startDate": window.StartDate,
		"endDate":   window.EndDate,
		"interval":  string(window.Interval),
	}

	if accountID, err := trade.MetaapiAccountID.Take(); err == nil && accountID != "" {
		params["metaapiAccountId"] = accountID
		if trade.Region != "" {
			params["region"] = trade.Region
		}
	}

	var payload ohlcPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&payload).
		Get("/api/ohlc")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderFetchFailed, "candle service request failed", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, provider.ErrNoData
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeProviderStatus, "candle service returned status %d", resp.StatusCode())
	}

	if len(payload.Bars) == 0 {
		return nil, provider.ErrNoData
	}

	return &payload, nil
}

func (c *Client) synthesize(trade types.Trade, window types.FetchWindow) ChartData {
	entryPrice, _ := trade.EntryPrice.Float64()
	exitPrice, _ := trade.ExitPrice.Float64()

	bars := c.synth.Generate(window.EntryTimestamp, window.ExitTimestamp, entryPrice, exitPrice)

	return ChartData{Bars: bars, Source: types.SourceSynthetic, Window: window}
}
