package provider

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tradelens/chartdata/internal/types"
)

type SyntheticTestSuite struct {
	suite.Suite

	gen *SyntheticGenerator
}

func TestSyntheticSuite(t *testing.T) {
	suite.Run(t, new(SyntheticTestSuite))
}

func (suite *SyntheticTestSuite) SetupTest() {
	suite.gen = NewSyntheticGenerator(rand.NewSource(42))
}

func (suite *SyntheticTestSuite) TestGenerateShape() {
	entry := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC).Unix()
	exit := entry + 45*60

	bars := suite.gen.Generate(entry, exit, 1.1000, 1.1050)

	// 45 one-minute steps plus the seed bar.
	suite.Require().Len(bars, 46)

	first := bars[0]
	suite.Equal(entry, first.Time)
	suite.Equal(1.1000, first.Open)
	suite.Equal(1.1000, first.High)
	suite.Equal(1.1000, first.Low)
	suite.Equal(1.1000, first.Close)

	for i, b := range bars {
		if i > 0 {
			suite.Greater(b.Time, bars[i-1].Time, "timestamps must be strictly increasing")
			suite.Equal(bars[i-1].Close, b.Open, "each bar opens at the previous close")
		}

		suite.GreaterOrEqual(b.High, b.Open)
		suite.GreaterOrEqual(b.High, b.Close)
		suite.LessOrEqual(b.Low, b.Open)
		suite.LessOrEqual(b.Low, b.Close)
	}

	// The walk ends near the exit price, within the wiggle band.
	wiggle := (1.1050 - 1.1000) * syntheticWigglePct
	suite.InDelta(1.1050, bars[len(bars)-1].Close, wiggle)
}

func (suite *SyntheticTestSuite) TestGenerateClampsSteps() {
	entry := int64(1_700_000_000)

	// A three-minute trade still produces the minimum candle count.
	short := suite.gen.Generate(entry, entry+3*60, 1.0, 1.1)
	suite.Len(short, syntheticMinSteps+1)

	// A week-long trade is capped.
	long := suite.gen.Generate(entry, entry+7*24*60*60, 1.0, 1.1)
	suite.Len(long, syntheticMaxSteps+1)
	suite.LessOrEqual(long[len(long)-1].Time, entry+7*24*60*60)
}

func (suite *SyntheticTestSuite) TestGenerateDegenerateSpan() {
	entry := int64(1_700_000_000)

	bars := suite.gen.Generate(entry, entry, 1.2345, 1.2345)

	suite.Require().NotEmpty(bars)
	suite.Equal(entry, bars[0].Time)
	suite.Greater(bars[len(bars)-1].Time, entry)

	// Flat trades still move a little.
	moved := false
	for _, b := range bars[1:] {
		if b.Close != 1.2345 {
			moved = true
			break
		}
	}

	suite.True(moved)
}

func (suite *SyntheticTestSuite) TestGenerateDeterministicWithSeed() {
	a := NewSyntheticGenerator(rand.NewSource(7)).Generate(1000, 4000, 2.0, 2.5)
	b := NewSyntheticGenerator(rand.NewSource(7)).Generate(1000, 4000, 2.0, 2.5)

	suite.Equal(a, b)
}

func (suite *SyntheticTestSuite) TestFetch() {
	bars, err := suite.gen.Fetch(context.Background(), Request{
		EntryTimestamp: 1_700_000_000,
		ExitTimestamp:  1_700_003_600,
		EntryPrice:     1.25,
		ExitPrice:      1.20,
	})

	suite.Require().NoError(err)
	suite.NotEmpty(bars)
	suite.Equal(types.SourceSynthetic, suite.gen.Name())
	suite.Equal(1.25, bars[0].Open)
}
