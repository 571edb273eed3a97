package analytics

import (
	"math"

	"InlineRank/internal/domain/models"
)

// Metric enumerates every column the engine can normalize or sort by.
type Metric int

const (
	MetricPotentialReturn Metric = iota
	MetricBollingerWidth
	MetricVaR95
	MetricBarrierDistance
	MetricDaysUntilExpiry
	MetricProbStay
	MetricExpectedReturn
	MetricSigmaDistance
	MetricOffer
	MetricBid
	MetricSpread
	MetricRangePercent
	MetricDaysRunning
	MetricVolatility
	MetricDiffToLower
	MetricDiffToUpper
	MetricSigmaLower
	MetricSigmaUpper
	MetricExpectedProfit
	MetricBlackScholesPrice
	MetricSignal
	MetricScore
	MetricOptimizedScore
	MetricOpitzScore

	metricCount
)

// Kind says how a metric's values compare.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindOrdinal Kind = "ordinal"
)

type metricDef struct {
	key            string
	label          string
	kind           Kind
	higherIsBetter bool
	// enriched reads metrics derivable from EnrichedMetrics; ok=false means missing.
	enriched func(e *models.EnrichedMetrics) (float64, bool)
	scored   func(s *models.ScoredInstrument) float64
}

func num(f func(e *models.EnrichedMetrics) float64) func(e *models.EnrichedMetrics) (float64, bool) {
	return func(e *models.EnrichedMetrics) (float64, bool) {
		v := f(e)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
}

var metricDefs = [metricCount]metricDef{
	MetricPotentialReturn: {key: "potential_return", label: "Potential Return", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.PotentialReturn })},
	MetricBollingerWidth: {key: "bollinger_width", label: "Boll Width", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.BollingerWidth })},
	MetricVaR95: {key: "var95", label: "VaR 95%", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.VaR95 })},
	MetricBarrierDistance: {key: "barrier_distance", label: "Barrier Distance", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return math.Min(e.DiffToLower, e.DiffToUpper) })},
	MetricDaysUntilExpiry: {key: "days_until_expiry", label: "Days Left", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return float64(e.DaysUntilExpiry) })},
	MetricProbStay: {key: "prob_stay", label: "Prob Stay", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.ProbStay })},
	MetricExpectedReturn: {key: "expected_return_pct", label: "Return", kind: KindNumeric, higherIsBetter: true,
		enriched: func(e *models.EnrichedMetrics) (float64, bool) {
			if e.ExpectedReturnPct == nil {
				return 0, false
			}
			v := *e.ExpectedReturnPct
			return v, !math.IsNaN(v) && !math.IsInf(v, 0)
		}},
	MetricSigmaDistance: {key: "sigma_distance", label: "Sigma", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return math.Min(e.SigmaDistanceLower, e.SigmaDistanceUpper) })},
	MetricOffer: {key: "offer", label: "Offer", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.Offer })},
	MetricBid: {key: "bid", label: "Bid", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.Bid })},
	MetricSpread: {key: "spread", label: "Spread", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.Spread })},
	MetricRangePercent: {key: "range_percent", label: "Range %", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.RangePercent })},
	MetricDaysRunning: {key: "days_running", label: "Days Running", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return float64(e.DaysRunning) })},
	MetricVolatility: {key: "volatility", label: "Volatility", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.Volatility })},
	MetricDiffToLower: {key: "diff_to_lower", label: "Diff ↓", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.DiffToLower })},
	MetricDiffToUpper: {key: "diff_to_upper", label: "Diff ↑", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.DiffToUpper })},
	MetricSigmaLower: {key: "sigma_distance_lower", label: "Sigma ↓", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.SigmaDistanceLower })},
	MetricSigmaUpper: {key: "sigma_distance_upper", label: "Sigma ↑", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.SigmaDistanceUpper })},
	MetricExpectedProfit: {key: "expected_profit", label: "Exp Profit", kind: KindNumeric, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.ExpectedProfit })},
	MetricBlackScholesPrice: {key: "black_scholes_price", label: "Black Scholes", kind: KindNumeric,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.BlackScholesPrice })},
	MetricSignal: {key: "black_scholes_signal", label: "BS Signal", kind: KindOrdinal, higherIsBetter: true,
		enriched: num(func(e *models.EnrichedMetrics) float64 { return e.BlackScholesSignal.Rank() })},
	MetricScore: {key: "score", label: "Raw Score", kind: KindNumeric, higherIsBetter: true,
		scored: func(s *models.ScoredInstrument) float64 { return s.Score }},
	MetricOptimizedScore: {key: "optimized_score", label: "Score", kind: KindNumeric, higherIsBetter: true,
		scored: func(s *models.ScoredInstrument) float64 { return s.OptimizedScore }},
	MetricOpitzScore: {key: "opitz_score", label: "Opitz", kind: KindNumeric, higherIsBetter: true,
		scored: func(s *models.ScoredInstrument) float64 { return s.OpitzScore }},
}

var metricsByKey = func() map[string]Metric {
	m := make(map[string]Metric, metricCount)
	for i, d := range metricDefs {
		m[d.key] = Metric(i)
	}
	return m
}()

// ParseMetric resolves a metric key such as "prob_stay".
func ParseMetric(key string) (Metric, bool) {
	m, ok := metricsByKey[key]
	return m, ok
}

func (m Metric) valid() bool { return m >= 0 && m < metricCount }

func (m Metric) String() string {
	if !m.valid() {
		return "unknown"
	}
	return metricDefs[m].key
}

func (m Metric) Label() string        { return metricDefs[m].label }
func (m Metric) Kind() Kind           { return metricDefs[m].kind }
func (m Metric) HigherIsBetter() bool { return metricDefs[m].higherIsBetter }

// EnrichedValue reads the metric from per-instrument fields. Score metrics and
// undefined values (e.g. expected return at a zero offer) report false.
func (m Metric) EnrichedValue(e *models.EnrichedMetrics) (float64, bool) {
	if !m.valid() || metricDefs[m].enriched == nil {
		return 0, false
	}
	return metricDefs[m].enriched(e)
}

// Value reads the metric from a scored row.
func (m Metric) Value(s *models.ScoredInstrument) (float64, bool) {
	if !m.valid() {
		return 0, false
	}
	if f := metricDefs[m].scored; f != nil {
		return f(s), true
	}
	return m.EnrichedValue(&s.EnrichedMetrics)
}

// MetricInfo describes a metric for API consumers.
type MetricInfo struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	Kind           Kind   `json:"kind"`
	HigherIsBetter bool   `json:"higher_is_better"`
}

// Catalog lists all metrics in declaration order.
func Catalog() []MetricInfo {
	out := make([]MetricInfo, 0, metricCount)
	for i := Metric(0); i < metricCount; i++ {
		out = append(out, MetricInfo{Key: i.String(), Label: i.Label(), Kind: i.Kind(), HigherIsBetter: i.HigherIsBetter()})
	}
	return out
}
