package chartdata

import (
	"github.com/tradelens/chartdata/internal/config"
	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/pkg/chartdata/cache"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
)

// NewResolverFromConfig wires the provider cascade from service
// configuration. Market sources without a configured key are left out, which
// is how a deployment without any keys ends up on the 404-then-synthesize
// path.
func NewResolverFromConfig(cfg *config.Config, log *logger.Logger) *Resolver {
	var broker provider.Provider
	if cfg.Providers.Metaapi.Token != "" {
		broker = provider.NewMetaapiProvider(cfg.Providers.Metaapi.BaseURL, cfg.Providers.Metaapi.Token)
	}

	markets := make([]provider.Provider, 0, 2)
	if cfg.Providers.Finnhub.APIKey != "" {
		markets = append(markets, provider.NewFinnhubProvider(cfg.Providers.Finnhub.BaseURL, cfg.Providers.Finnhub.APIKey))
	}

	if cfg.Providers.TwelveData.APIKey != "" {
		markets = append(markets, provider.NewTwelveDataProvider(cfg.Providers.TwelveData.BaseURL, cfg.Providers.TwelveData.APIKey))
	}

	return NewResolver(
		cache.NewMemory(cfg.CacheTTL()),
		log,
		broker,
		markets,
		WithBrokerTimeout(cfg.BrokerTimeout()),
	)
}
