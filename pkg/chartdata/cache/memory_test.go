package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tradelens/chartdata/internal/types"
)

type MemoryTestSuite struct {
	suite.Suite

	cache *Memory
	clock time.Time
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemoryTestSuite))
}

func (suite *MemoryTestSuite) SetupTest() {
	suite.clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	suite.cache = NewMemory(DefaultTTL)
	suite.cache.now = func() time.Time { return suite.clock }
}

func (suite *MemoryTestSuite) entry() Entry {
	return Entry{
		Bars:   []types.Bar{{Time: 1709280000, Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15}},
		Source: types.SourceFinnhub,
	}
}

func (suite *MemoryTestSuite) TestGetMiss() {
	_, ok := suite.cache.Get("absent")
	suite.False(ok)
}

func (suite *MemoryTestSuite) TestSetAndGet() {
	key := ServerKey("EURUSD", "2024-03-01", "2024-03-02", types.IntervalFiveMinutes)
	suite.cache.Set(key, TagOHLC, suite.entry())

	got, ok := suite.cache.Get(key)
	suite.Require().True(ok)
	suite.Equal(types.SourceFinnhub, got.Source)
	suite.Len(got.Bars, 1)
	suite.Equal(suite.clock, got.WrittenAt)
}

func (suite *MemoryTestSuite) TestExpiry() {
	suite.cache.Set("k", TagOHLC, suite.entry())

	suite.clock = suite.clock.Add(DefaultTTL - time.Minute)
	_, ok := suite.cache.Get("k")
	suite.True(ok)

	suite.clock = suite.clock.Add(2 * time.Minute)
	_, ok = suite.cache.Get("k")
	suite.False(ok)

	// Expired entries stay physically present until invalidated.
	suite.Equal(1, suite.cache.Len())
}

func (suite *MemoryTestSuite) TestOverwrite() {
	suite.cache.Set("k", TagOHLC, suite.entry())

	updated := suite.entry()
	updated.Source = types.SourceTwelveData
	suite.cache.Set("k", TagOHLC, updated)

	got, ok := suite.cache.Get("k")
	suite.Require().True(ok)
	suite.Equal(types.SourceTwelveData, got.Source)
	suite.Equal(1, suite.cache.Len())
}

func (suite *MemoryTestSuite) TestInvalidateTag() {
	suite.cache.Set("a", TagOHLC, suite.entry())
	suite.cache.Set("b", TagOHLC, suite.entry())
	suite.cache.Set("c", "other", suite.entry())

	suite.cache.InvalidateTag(TagOHLC)

	_, ok := suite.cache.Get("a")
	suite.False(ok)
	_, ok = suite.cache.Get("c")
	suite.True(ok)
	suite.Equal(1, suite.cache.Len())
}

func (suite *MemoryTestSuite) TestKeyDerivation() {
	suite.Equal(
		"ohlc-EURUSD-2024-03-01-2024-03-02-5min",
		ServerKey("EURUSD", "2024-03-01", "2024-03-02", types.IntervalFiveMinutes))
	suite.Equal(
		"ohlc_EURUSD_2024-03-01_2024-03-02_5min",
		ClientKey(DefaultClientPrefix, "EURUSD", "2024-03-01", "2024-03-02", types.IntervalFiveMinutes))
}
