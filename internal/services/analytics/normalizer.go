package analytics

import "InlineRank/internal/domain/models"

// NormalizedMetrics are the metrics the composite scores consume.
var NormalizedMetrics = []Metric{
	MetricPotentialReturn,
	MetricBollingerWidth,
	MetricVaR95,
	MetricBarrierDistance,
	MetricDaysUntilExpiry,
	MetricProbStay,
	MetricExpectedReturn,
	MetricSigmaDistance,
	MetricOffer,
}

// Range is the batch-wide extent of one metric. Count is the number of
// instruments that had a defined value.
type Range struct {
	Min   float64
	Max   float64
	Count int
}

// Ranges are valid only for the batch they were built from.
type Ranges map[Metric]Range

// BuildRanges scans the batch once per metric. Undefined values take part as
// 0, the same value Normalize maps them from, so every instrument is counted.
func BuildRanges(batch []models.EnrichedMetrics, metrics ...Metric) Ranges {
	if len(metrics) == 0 {
		metrics = NormalizedMetrics
	}
	out := make(Ranges, len(metrics))
	for _, m := range metrics {
		var r Range
		for i := range batch {
			v := normInput(m, &batch[i])
			if r.Count == 0 || v < r.Min {
				r.Min = v
			}
			if r.Count == 0 || v > r.Max {
				r.Max = v
			}
			r.Count++
		}
		out[m] = r
	}
	return out
}

// Normalize maps the instrument's value of m into [0, 1]. A constant batch,
// including a batch of one, yields 0.5. The row itself keeps the undefined
// value; only normalization reads it as 0.
func (r Ranges) Normalize(m Metric, e *models.EnrichedMetrics) float64 {
	rg, ok := r[m]
	if !ok || rg.Count == 0 {
		return 0.5
	}
	return MinMax(normInput(m, e), rg.Min, rg.Max)
}

func normInput(m Metric, e *models.EnrichedMetrics) float64 {
	v, ok := m.EnrichedValue(e)
	if !ok {
		return 0
	}
	return v
}

// MinMax is (x-min)/(max-min), or 0.5 when the range is degenerate.
func MinMax(x, min, max float64) float64 {
	if max == min {
		return 0.5
	}
	return clamp01((x - min) / (max - min))
}
