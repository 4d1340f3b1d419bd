package provider

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/tradelens/chartdata/internal/types"
)

const (
	// syntheticMinSteps and syntheticMaxSteps bound the generated candle
	// count: short trades still get a visually meaningful number of candles,
	// long trades don't produce excessive data.
	syntheticMinSteps = 8
	syntheticMaxSteps = 50

	// syntheticWigglePct bounds the random perturbation per step relative to
	// the absolute entry-exit price distance.
	syntheticWigglePct = 0.015

	// syntheticDegenerateSpan replaces a non-positive time span, in seconds.
	syntheticDegenerateSpan = 5 * 60
)

// SyntheticGenerator fabricates a deterministic-shape random-walk bar
// sequence between a trade's entry and exit prices. It is the terminal
// fallback when no real market data can be obtained; its output is labeled
// synthetic, never cached, and never treated as authoritative.
type SyntheticGenerator struct {
	rng *rand.Rand
}

// NewSyntheticGenerator creates a generator. Passing a rand.Source pins the
// noise for tests; a nil source seeds from the clock.
func NewSyntheticGenerator(src rand.Source) *SyntheticGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &SyntheticGenerator{rng: rand.New(src)}
}

// Name implements Provider.
func (g *SyntheticGenerator) Name() types.Source {
	return types.SourceSynthetic
}

// Fetch implements Provider. It always succeeds; the trade instants and
// prices are carried on the request.
func (g *SyntheticGenerator) Fetch(_ context.Context, req Request) ([]types.Bar, error) {
	return g.Generate(req.EntryTimestamp, req.ExitTimestamp, req.EntryPrice, req.ExitPrice), nil
}

// Generate interpolates a bar sequence from entry to exit. The first bar
// opens at the entry price at entryTimestamp; each following step's close is
// linearly interpolated toward the exit price plus a bounded perturbation,
// its open is the previous close, and high/low bracket open/close with
// independent small offsets. Timestamps are strictly increasing.
func (g *SyntheticGenerator) Generate(entryTimestamp, exitTimestamp int64, entryPrice, exitPrice float64) []types.Bar {
	if exitTimestamp <= entryTimestamp {
		exitTimestamp = entryTimestamp + syntheticDegenerateSpan
	}

	spanSec := exitTimestamp - entryTimestamp

	steps := int(spanSec / 60)
	if steps < syntheticMinSteps {
		steps = syntheticMinSteps
	} else if steps > syntheticMaxSteps {
		steps = syntheticMaxSteps
	}

	stepSec := spanSec / int64(steps)
	if stepSec < 1 {
		stepSec = 1
	}

	dist := math.Abs(exitPrice - entryPrice)

	wiggle := dist * syntheticWigglePct
	if wiggle == 0 {
		// Flat trades still get a visible, nonzero wiggle.
		wiggle = math.Max(math.Abs(entryPrice)*0.001, 0.0001)
	}

	bars := make([]types.Bar, 0, steps+1)
	bars = append(bars, types.Bar{
		Time:  entryTimestamp,
		Open:  entryPrice,
		High:  entryPrice,
		Low:   entryPrice,
		Close: entryPrice,
	})

	prevClose := entryPrice
	prevTime := entryTimestamp

	for i := 1; i <= steps; i++ {
		t := entryTimestamp + int64(i)*stepSec
		if t <= prevTime {
			continue
		}

		frac := float64(i) / float64(steps)
		target := entryPrice + (exitPrice-entryPrice)*frac
		stepClose := target + g.symmetric(wiggle)
		stepOpen := prevClose
		high := math.Max(stepOpen, stepClose) + g.positive(wiggle/2)
		low := math.Min(stepOpen, stepClose) - g.positive(wiggle/2)

		bars = append(bars, types.Bar{
			Time:  t,
			Open:  stepOpen,
			High:  high,
			Low:   low,
			Close: stepClose,
		})

		prevClose = stepClose
		prevTime = t
	}

	return bars
}

// symmetric returns a uniform value in [-bound, bound].
func (g *SyntheticGenerator) symmetric(bound float64) float64 {
	return (g.rng.Float64()*2 - 1) * bound
}

// positive returns a uniform value in [0, bound).
func (g *SyntheticGenerator) positive(bound float64) float64 {
	return g.rng.Float64() * bound
}
