package features

import (
	"math"
	"testing"
	"time"

	"InlineRank/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func historyOf(prices, bids []float64) models.PriceHistory {
	h := make(models.PriceHistory, len(prices))
	for i := range prices {
		h[i] = models.PriceObservation{
			Date:            day0.AddDate(0, 0, i),
			UnderlyingPrice: prices[i],
			Bid:             bids[i],
			Ask:             bids[i] + 0.05,
		}
	}
	return h
}

func linear(n int, from, to float64) []float64 {
	out := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

func TestComputeInsufficientHistory(t *testing.T) {
	c := NewCalculator(20, 0.95)
	for _, n := range []int{0, 1, 5, 20} {
		h := historyOf(linear(max(n, 2), 100, 110)[:n], linear(max(n, 2), 9, 9.5)[:n])
		require.Equal(t, models.SeriesStats{}, c.Compute(h), "n=%d", n)
	}
}

func TestComputeLinearRise(t *testing.T) {
	c := NewCalculator(DefaultLookback, DefaultConfidence)
	h := historyOf(linear(21, 100, 105), linear(21, 9, 9.4))

	got := c.Compute(h)
	assert.Greater(t, got.Volatility, 0.0)
	assert.Greater(t, got.BollingerWidth, 0.0)
	assert.False(t, math.IsInf(got.BollingerWidth, 0))
	// bids only rise, so the 5% quantile return is a gain and VaR clamps to zero
	assert.Equal(t, 0.0, got.VaR95)
}

func TestComputeVaRFromBidDrops(t *testing.T) {
	bids := make([]float64, 21)
	bids[0] = 10
	bids[1] = bids[0] * math.Exp(-0.1)
	bids[2] = bids[1] * math.Exp(-0.05)
	for i := 3; i < len(bids); i++ {
		bids[i] = bids[2]
	}
	h := historyOf(linear(21, 100, 102), bids)

	got := NewCalculator(20, 0.95).Compute(h)
	// floor(0.05*20) = 1 picks the second-worst return
	assert.InDelta(t, 0.05*bids[20], got.VaR95, 1e-12)
}

func TestComputeSortsHistory(t *testing.T) {
	h := historyOf(linear(25, 50, 60), linear(25, 8, 9))
	reversed := make(models.PriceHistory, len(h))
	for i := range h {
		reversed[len(h)-1-i] = h[i]
	}
	c := NewCalculator(20, 0.95)
	assert.Equal(t, c.Compute(h), c.Compute(reversed))
	// input slice is left untouched
	assert.True(t, reversed[0].Date.After(reversed[1].Date))
}

func TestComputeLogReturns(t *testing.T) {
	assert.Nil(t, ComputeLogReturns([]float64{1}))
	got := ComputeLogReturns([]float64{100, 110, 0, 50})
	require.Len(t, got, 3)
	assert.InDelta(t, math.Log(1.1), got[0], 1e-12)
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.0, got[2])
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01}))
	want := math.Sqrt(0.0002) * math.Sqrt(252)
	assert.InDelta(t, want, AnnualizedVolatility([]float64{0.01, -0.01}), 1e-12)
}

func TestBollingerWidth(t *testing.T) {
	assert.Equal(t, 0.0, BollingerWidth(nil))
	assert.Equal(t, 0.0, BollingerWidth([]float64{0, 0, 0}))
	assert.Equal(t, 0.0, BollingerWidth([]float64{5, 5, 5}))
	// mean 2, population sd 1: bands 0 and 4
	assert.InDelta(t, 2.0, BollingerWidth([]float64{1, 3}), 1e-12)
}

func TestHistoricalVaR(t *testing.T) {
	rets := make([]float64, 20)
	rets[0], rets[1], rets[2] = -0.3, -0.2, -0.1

	assert.InDelta(t, 0.2*8, HistoricalVaR(rets, 0.95, 8), 1e-12)
	assert.InDelta(t, 0.1*8, HistoricalVaR(rets, 0.90, 8), 1e-12)
	assert.Equal(t, 0.0, HistoricalVaR(rets, 0.95, 0))
	assert.Equal(t, 0.0, HistoricalVaR(nil, 0.95, 8))
}

func TestNewCalculatorDefaults(t *testing.T) {
	c := NewCalculator(0, 1.5)
	assert.Equal(t, DefaultLookback, c.Lookback)
	assert.Equal(t, DefaultConfidence, c.Confidence)
}
