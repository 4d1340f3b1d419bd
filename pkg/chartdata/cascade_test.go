package chartdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/chartdata/cache"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
	"github.com/tradelens/chartdata/pkg/errors"
)

// stubProvider scripts one cascade member: fixed bars or a fixed error, with
// a call counter.
type stubProvider struct {
	source types.Source
	bars   []types.Bar
	err    error
	calls  int
	// blockUntilCancel makes Fetch wait for context cancellation, simulating
	// a hung upstream.
	blockUntilCancel bool
}

func (s *stubProvider) Name() types.Source {
	return s.source
}

func (s *stubProvider) Fetch(ctx context.Context, _ provider.Request) ([]types.Bar, error) {
	s.calls++

	if s.blockUntilCancel {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	return s.bars, s.err
}

type CascadeTestSuite struct {
	suite.Suite

	serverCache *cache.Memory
}

func TestCascadeSuite(t *testing.T) {
	suite.Run(t, new(CascadeTestSuite))
}

func (suite *CascadeTestSuite) SetupTest() {
	suite.serverCache = cache.NewMemory(cache.DefaultTTL)
}

func (suite *CascadeTestSuite) request() provider.Request {
	return provider.Request{
		Symbol:    "EURUSD",
		StartDate: "2024-03-01",
		EndDate:   "2024-03-02",
		From:      1709251200,
		To:        1709424000,
		Interval:  types.IntervalFiveMinutes,
	}
}

func (suite *CascadeTestSuite) bars(t int64) []types.Bar {
	return []types.Bar{{Time: t, Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15}}
}

func (suite *CascadeTestSuite) resolver(broker provider.Provider, markets ...provider.Provider) *Resolver {
	return NewResolver(suite.serverCache, logger.NewNopLogger(), broker, markets)
}

func (suite *CascadeTestSuite) TestFirstMarketWins() {
	first := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(100)}
	second := &stubProvider{source: types.SourceTwelveData, bars: suite.bars(200)}

	res, err := suite.resolver(nil, first, second).Resolve(context.Background(), suite.request())

	suite.Require().NoError(err)
	suite.Equal(types.SourceFinnhub, res.Source)
	suite.False(res.Cached)
	suite.Equal(1, first.calls)
	suite.Equal(0, second.calls, "the cascade short-circuits on first success")
}

func (suite *CascadeTestSuite) TestFailureAdvancesCascade() {
	first := &stubProvider{source: types.SourceFinnhub, err: provider.ErrNoData}
	second := &stubProvider{source: types.SourceTwelveData, bars: suite.bars(200)}

	res, err := suite.resolver(nil, first, second).Resolve(context.Background(), suite.request())

	suite.Require().NoError(err)
	suite.Equal(types.SourceTwelveData, res.Source)
	suite.Equal(1, first.calls)
	suite.Equal(1, second.calls)
}

func (suite *CascadeTestSuite) TestExhaustedCascade() {
	first := &stubProvider{source: types.SourceFinnhub, err: provider.ErrNoData}
	second := &stubProvider{source: types.SourceTwelveData, err: provider.ErrNoData}

	_, err := suite.resolver(nil, first, second).Resolve(context.Background(), suite.request())

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoData))
}

func (suite *CascadeTestSuite) TestEmptyCascade() {
	_, err := suite.resolver(nil).Resolve(context.Background(), suite.request())

	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoData))
}

func (suite *CascadeTestSuite) TestBrokerFirstWithAccount() {
	broker := &stubProvider{source: types.SourceMetaapi, bars: suite.bars(100)}
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}

	req := suite.request()
	req.AccountID = "acct-1"

	res, err := suite.resolver(broker, market).Resolve(context.Background(), req)

	suite.Require().NoError(err)
	suite.Equal(types.SourceMetaapi, res.Source)
	suite.Equal(1, broker.calls)
	suite.Equal(0, market.calls)

	// Broker results are never written to the server cache.
	suite.Equal(0, suite.serverCache.Len())
}

func (suite *CascadeTestSuite) TestBrokerSkippedWithoutAccount() {
	broker := &stubProvider{source: types.SourceMetaapi, bars: suite.bars(100)}
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}

	res, err := suite.resolver(broker, market).Resolve(context.Background(), suite.request())

	suite.Require().NoError(err)
	suite.Equal(types.SourceFinnhub, res.Source)
	suite.Equal(0, broker.calls)
}

func (suite *CascadeTestSuite) TestBrokerFailureAdvancesToMarkets() {
	broker := &stubProvider{source: types.SourceMetaapi, err: provider.ErrNoData}
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}

	req := suite.request()
	req.AccountID = "acct-1"

	res, err := suite.resolver(broker, market).Resolve(context.Background(), req)

	suite.Require().NoError(err)
	suite.Equal(types.SourceFinnhub, res.Source)
	suite.Equal(1, broker.calls)
}

func (suite *CascadeTestSuite) TestBrokerTimeout() {
	broker := &stubProvider{source: types.SourceMetaapi, blockUntilCancel: true}
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}

	req := suite.request()
	req.AccountID = "acct-1"

	resolver := NewResolver(suite.serverCache, logger.NewNopLogger(), broker, []provider.Provider{market},
		WithBrokerTimeout(20*time.Millisecond))

	start := time.Now()
	res, err := resolver.Resolve(context.Background(), req)

	suite.Require().NoError(err)
	suite.Equal(types.SourceFinnhub, res.Source)
	suite.Less(time.Since(start), 5*time.Second, "a hung broker must not stall the render")
}

func (suite *CascadeTestSuite) TestCacheHitSkipsUpstream() {
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}
	resolver := suite.resolver(nil, market)

	first, err := resolver.Resolve(context.Background(), suite.request())
	suite.Require().NoError(err)
	suite.False(first.Cached)

	second, err := resolver.Resolve(context.Background(), suite.request())
	suite.Require().NoError(err)
	suite.True(second.Cached)
	suite.Equal(types.SourceFinnhub, second.Source)
	suite.Equal(first.Bars, second.Bars)

	suite.Equal(1, market.calls, "the second request must be served without an upstream call")
}

func (suite *CascadeTestSuite) TestDifferentWindowMissesCache() {
	market := &stubProvider{source: types.SourceFinnhub, bars: suite.bars(200)}
	resolver := suite.resolver(nil, market)

	_, err := resolver.Resolve(context.Background(), suite.request())
	suite.Require().NoError(err)

	other := suite.request()
	other.Interval = types.IntervalOneHour

	_, err = resolver.Resolve(context.Background(), other)
	suite.Require().NoError(err)

	suite.Equal(2, market.calls)
}
