package analytics

import (
	"math"

	"InlineRank/internal/domain/models"
)

const (
	// SafeSigmaDistance stands in for the sigma distance when volatility or time
	// is zero and spot sits inside the corridor.
	SafeSigmaDistance = 50.0

	// SignalBand is the neutral band, in currency units, around the fair value.
	SignalBand = 0.15
)

// BarrierInput is the market state the barrier model reads. T is in trading years.
type BarrierInput struct {
	Spot    float64
	Lower   float64
	Upper   float64
	Sigma   float64
	T       float64
	Offer   float64
	Nominal float64
}

// BarrierResult holds the model outputs for one instrument.
type BarrierResult struct {
	SigmaLower        float64
	SigmaUpper        float64
	ProbStay          float64
	FairValue         float64
	Signal            models.Signal
	ExpectedProfit    float64
	ExpectedReturnPct *float64
	PotentialReturn   float64
}

// EvaluateBarrier runs the full closed-form model.
func EvaluateBarrier(in BarrierInput) BarrierResult {
	var r BarrierResult
	r.SigmaLower, r.SigmaUpper = SigmaDistances(in.Spot, in.Lower, in.Upper, in.Sigma, in.T)
	r.ProbStay = ProbabilityOfStay(in.Spot, in.Lower, in.Upper, in.Sigma, in.T)
	r.FairValue = in.Nominal * r.ProbStay
	r.Signal = FairValueSignal(r.FairValue, in.Offer)
	r.ExpectedProfit, r.ExpectedReturnPct = ExpectedReturn(in.Nominal, r.ProbStay, in.Offer)
	r.PotentialReturn = PotentialReturn(in.Nominal, in.Offer)
	return r
}

func inCorridor(spot, lower, upper float64) bool {
	return lower < spot && spot < upper
}

// degenerate reports inputs for which the diffusion terms are undefined.
func degenerate(spot, sigma, t float64) bool {
	return !(sigma > 0) || !(t > 0) || !(spot > 0) || math.IsInf(sigma, 0)
}

// SigmaDistances returns ln(S/L) and ln(U/S) in units of sigma*sqrt(T).
func SigmaDistances(spot, lower, upper, sigma, t float64) (float64, float64) {
	if degenerate(spot, sigma, t) || lower <= 0 {
		if inCorridor(spot, lower, upper) {
			return SafeSigmaDistance, SafeSigmaDistance
		}
		return 0, 0
	}
	scale := sigma * math.Sqrt(t)
	return math.Log(spot/lower) / scale, math.Log(upper/spot) / scale
}

// ProbabilityOfStay is the risk-neutral probability that a log-normal
// underlying ends inside [lower, upper] after t years.
func ProbabilityOfStay(spot, lower, upper, sigma, t float64) float64 {
	if degenerate(spot, sigma, t) || lower <= 0 {
		if inCorridor(spot, lower, upper) {
			return 1
		}
		return 0
	}
	scale := sigma * math.Sqrt(t)
	muT := -0.5 * sigma * sigma * t
	zLower := (math.Log(lower/spot) - muT) / scale
	zUpper := (math.Log(upper/spot) - muT) / scale
	return clamp01(NormCDF(zUpper) - NormCDF(zLower))
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// FairValueSignal compares the model price with the offer.
func FairValueSignal(fair, offer float64) models.Signal {
	d := fair - offer
	switch {
	case d > SignalBand:
		return models.SignalBuy
	case d < -SignalBand:
		return models.SignalSell
	default:
		return models.SignalFair
	}
}

// ExpectedReturn returns the expected profit and its percentage of the offer.
// The percentage is nil when the offer is zero.
func ExpectedReturn(nominal, probStay, offer float64) (float64, *float64) {
	profit := nominal*probStay - offer
	if offer == 0 {
		return profit, nil
	}
	pct := 100 * profit / offer
	return profit, &pct
}

// PotentialReturn is the payoff in percent if the corridor holds. Zero offer yields 0.
func PotentialReturn(nominal, offer float64) float64 {
	if offer == 0 {
		return 0
	}
	return 100 * (nominal - offer) / offer
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
