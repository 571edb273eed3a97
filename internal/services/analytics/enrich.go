package analytics

import (
	"math"
	"time"

	"InlineRank/internal/domain/models"
	domsvc "InlineRank/internal/domain/service"
	"InlineRank/internal/services/features"
	"InlineRank/pkg/util"
)

// Enricher derives the per-instrument metrics. It never looks at other
// instruments, so calls may run concurrently.
type Enricher struct {
	stats domsvc.StatsCalculator
	now   func() time.Time
}

func NewEnricher(stats domsvc.StatsCalculator, now func() time.Time) *Enricher {
	if stats == nil {
		stats = features.NewCalculator(features.DefaultLookback, features.DefaultConfidence)
	}
	if now == nil {
		now = time.Now
	}
	return &Enricher{stats: stats, now: now}
}

// Enrich assumes the snapshot already passed validation.
func (e *Enricher) Enrich(in models.InstrumentInput) models.EnrichedMetrics {
	p := in.Product
	now := e.now()

	out := models.EnrichedMetrics{
		ProductSnapshot: p,
		UnderlyingPrice: spotOrZero(in.Spot),
		RangePercent:    100 * (p.UpperBarrier - p.LowerBarrier) / p.LowerBarrier,
		Spread:          (p.Offer - p.Bid) / models.Nominal,
		DaysUntilExpiry: util.DaysBetween(now, p.MaturityDate),
		DaysRunning:     util.DaysBetween(p.IssueDate, now),
	}
	s := out.UnderlyingPrice
	out.DiffToLower = 100 * (s - p.LowerBarrier) / p.LowerBarrier
	out.DiffToUpper = 100 * (p.UpperBarrier - s) / p.UpperBarrier

	st := e.stats.Compute(in.History)
	out.Volatility = st.Volatility
	out.BollingerWidth = st.BollingerWidth
	out.VaR95 = st.VaR95

	br := EvaluateBarrier(BarrierInput{
		Spot:    s,
		Lower:   p.LowerBarrier,
		Upper:   p.UpperBarrier,
		Sigma:   st.Volatility,
		T:       YearsToExpiry(out.DaysUntilExpiry),
		Offer:   p.Offer,
		Nominal: models.Nominal,
	})
	out.SigmaDistanceLower = br.SigmaLower
	out.SigmaDistanceUpper = br.SigmaUpper
	out.ProbStay = br.ProbStay
	out.BlackScholesPrice = br.FairValue
	out.BlackScholesSignal = br.Signal
	out.ExpectedProfit = br.ExpectedProfit
	out.ExpectedReturnPct = br.ExpectedReturnPct
	out.PotentialReturn = br.PotentialReturn
	return out
}

// YearsToExpiry converts calendar days left into trading years. Expired is 0.
func YearsToExpiry(days int) float64 {
	if days <= 0 {
		return 0
	}
	return float64(days) / features.TradingDaysPerYear
}

func spotOrZero(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return 0
	}
	return *p
}
