package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InlineRank/internal/domain/models"
)

func TestProbabilityOfStayInCorridor(t *testing.T) {
	// S=100, L=90, U=110, sigma=0.3, T=0.1
	p := ProbabilityOfStay(100, 90, 110, 0.3, 0.1)
	assert.InDelta(t, 0.7098, p, 1e-3)
	assert.Greater(t, p, 0.5)
	assert.Less(t, p, 1.0)
}

func TestProbabilityOfStayNarrowsWithTime(t *testing.T) {
	short := ProbabilityOfStay(100, 90, 110, 0.3, 0.02)
	long := ProbabilityOfStay(100, 90, 110, 0.3, 0.5)
	assert.Greater(t, short, long)
}

func TestProbabilityOfStayBounded(t *testing.T) {
	spots := []float64{1, 50, 89.9, 90, 100, 110, 150, 1e6}
	sigmas := []float64{1e-6, 0.05, 0.3, 2, 50}
	times := []float64{1e-4, 0.1, 1, 10}
	for _, s := range spots {
		for _, sig := range sigmas {
			for _, tt := range times {
				p := ProbabilityOfStay(s, 90, 110, sig, tt)
				require.False(t, math.IsNaN(p))
				require.GreaterOrEqual(t, p, 0.0)
				require.LessOrEqual(t, p, 1.0)
			}
		}
	}
}

func TestDegenerateInputs(t *testing.T) {
	tests := []struct {
		name       string
		spot       float64
		sigma, tt  float64
		wantSigma  float64
		wantStayed float64
	}{
		{"zero vol inside", 100, 0, 0.1, SafeSigmaDistance, 1},
		{"zero time inside", 100, 0.3, 0, SafeSigmaDistance, 1},
		{"zero vol below", 80, 0, 0.1, 0, 0},
		{"zero time above", 120, 0.3, 0, 0, 0},
		{"on the barrier", 90, 0, 0.1, 0, 0},
		{"no spot", 0, 0.3, 0.1, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi := SigmaDistances(tc.spot, 90, 110, tc.sigma, tc.tt)
			assert.Equal(t, tc.wantSigma, lo)
			assert.Equal(t, tc.wantSigma, hi)
			assert.Equal(t, tc.wantStayed, ProbabilityOfStay(tc.spot, 90, 110, tc.sigma, tc.tt))
		})
	}
}

func TestSigmaDistances(t *testing.T) {
	lo, hi := SigmaDistances(100, 90, 110, 0.3, 0.1)
	scale := 0.3 * math.Sqrt(0.1)
	assert.InDelta(t, math.Log(100.0/90)/scale, lo, 1e-12)
	assert.InDelta(t, math.Log(110.0/100)/scale, hi, 1e-12)

	lo, _ = SigmaDistances(85, 90, 110, 0.3, 0.1)
	assert.Negative(t, lo)
}

func TestNormCDF(t *testing.T) {
	assert.Equal(t, 0.5, NormCDF(0))
	assert.InDelta(t, 0.975, NormCDF(1.959964), 1e-6)
	assert.InDelta(t, 0.025, NormCDF(-1.959964), 1e-6)
}

func TestFairValueSignal(t *testing.T) {
	assert.Equal(t, models.SignalBuy, FairValueSignal(9.0, 8.7))
	assert.Equal(t, models.SignalFair, FairValueSignal(9.0, 9.0))
	assert.Equal(t, models.SignalFair, FairValueSignal(9.0, 9.1))
	assert.Equal(t, models.SignalSell, FairValueSignal(9.0, 9.2))
}

func TestExpectedReturn(t *testing.T) {
	profit, pct := ExpectedReturn(10, 0.9, 8)
	assert.InDelta(t, 1.0, profit, 1e-12)
	require.NotNil(t, pct)
	assert.InDelta(t, 12.5, *pct, 1e-12)

	profit, pct = ExpectedReturn(10, 0.9, 0)
	assert.InDelta(t, 9.0, profit, 1e-12)
	assert.Nil(t, pct)
}

func TestPotentialReturn(t *testing.T) {
	assert.InDelta(t, 25.0, PotentialReturn(10, 8), 1e-12)
	assert.Zero(t, PotentialReturn(10, 0))
}

func TestEvaluateBarrier(t *testing.T) {
	r := EvaluateBarrier(BarrierInput{Spot: 100, Lower: 90, Upper: 110, Sigma: 0.3, T: 0.1, Offer: 6, Nominal: 10})
	assert.InDelta(t, 10*r.ProbStay, r.FairValue, 1e-12)
	assert.Equal(t, models.SignalBuy, r.Signal)
	assert.InDelta(t, r.FairValue-6, r.ExpectedProfit, 1e-12)
	require.NotNil(t, r.ExpectedReturnPct)
	assert.InDelta(t, 100*(10-6)/6.0, r.PotentialReturn, 1e-12)
}

func TestOpitzScore(t *testing.T) {
	assert.InDelta(t, 21.0, OpitzScore(25, 8, 0, 0), 1e-12)
	assert.InDelta(t, 21.0+0.68+0.8, OpitzScore(25, 8, 0.5, 0.2), 1e-12)
}
