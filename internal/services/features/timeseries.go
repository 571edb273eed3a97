package features

import (
	"math"
	"sort"

	"InlineRank/internal/domain/models"
	domsvc "InlineRank/internal/domain/service"

	"github.com/montanaflynn/stats"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252

	DefaultLookback   = 20
	DefaultConfidence = 0.95

	bollingerBandWidth = 2.0
)

// Calculator computes volatility, Bollinger width and historical VaR over a
// fixed lookback window. A history shorter than Lookback+1 observations yields
// all-zero statistics.
type Calculator struct {
	Lookback   int
	Confidence float64
}

// NewCalculator returns a Calculator, falling back to the defaults for
// non-positive lookback or a confidence outside (0, 1).
func NewCalculator(lookback int, confidence float64) *Calculator {
	if lookback < 2 {
		lookback = DefaultLookback
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	return &Calculator{Lookback: lookback, Confidence: confidence}
}

// Compute never fails; insufficient or degenerate data maps to zero.
func (c *Calculator) Compute(h models.PriceHistory) models.SeriesStats {
	if len(h) < c.Lookback+1 {
		return models.SeriesStats{}
	}
	if !sort.IsSorted(h) {
		sorted := make(models.PriceHistory, len(h))
		copy(sorted, h)
		sort.Stable(sorted)
		h = sorted
	}

	prices := h.UnderlyingPrices()
	bids := h.Bids()
	return models.SeriesStats{
		Volatility:     AnnualizedVolatility(tail(ComputeLogReturns(prices), c.Lookback)),
		BollingerWidth: BollingerWidth(tail(prices, c.Lookback)),
		VaR95:          HistoricalVaR(tail(ComputeLogReturns(bids), c.Lookback), c.Confidence, bids[len(bids)-1]),
	}
}

// ComputeLogReturns computes r_t = ln(P_t / P_{t-1}). Pairs with a non-positive
// price contribute a zero return. Returns nil for fewer than two prices.
func ComputeLogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		cur := prices[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// AnnualizedVolatility is the sample standard deviation of the returns scaled by sqrt(252).
func AnnualizedVolatility(logReturns []float64) float64 {
	if len(logReturns) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(logReturns)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(TradingDaysPerYear)
}

// BollingerWidth returns (upper - lower) / middle for bands at +-2 population
// standard deviations around the simple moving average.
func BollingerWidth(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	middle, err := stats.Mean(prices)
	if err != nil || middle == 0 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(prices)
	if err != nil {
		return 0
	}
	upper := middle + bollingerBandWidth*sd
	lower := middle - bollingerBandWidth*sd
	w := (upper - lower) / middle
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

// HistoricalVaR picks the empirical (1-confidence) quantile of the returns and
// expresses it as a currency loss on lastPrice. Gains at that quantile clamp to zero.
func HistoricalVaR(logReturns []float64, confidence, lastPrice float64) float64 {
	n := len(logReturns)
	if n == 0 || lastPrice <= 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, logReturns)
	sort.Float64s(sorted)

	// epsilon absorbs representation error, e.g. (1-0.9)*20 = 1.9999999999999996
	idx := int(math.Floor((1-confidence)*float64(n) + 1e-9))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	v := -sorted[idx] * lastPrice
	if v <= 0 {
		return 0
	}
	return v
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

var _ domsvc.StatsCalculator = (*Calculator)(nil)
