package analytics

import (
	"InlineRank/internal/domain/models"
)

// Weights of the two composite scores. Each group sums to 1 by default, which
// keeps both scores in [0, 1].
type Weights struct {
	// Score
	Return    float64 `json:"return"`
	Distance  float64 `json:"distance"`
	Bollinger float64 `json:"bollinger"`
	VaR       float64 `json:"var"`
	Expiry    float64 `json:"expiry"`

	// Opt Score
	Prob           float64 `json:"prob"`
	ExpectedReturn float64 `json:"expected_return"`
	Sigma          float64 `json:"sigma"`
	TailRisk       float64 `json:"tail_risk"`
}

// DefaultWeights returns the documented constants.
func DefaultWeights() Weights {
	return Weights{
		Return:    0.25,
		Distance:  0.20,
		Bollinger: 0.15,
		VaR:       0.15,
		Expiry:    0.25,

		Prob:           0.45,
		ExpectedReturn: 0.30,
		Sigma:          0.15,
		TailRisk:       0.10,
	}
}

// Terms are the normalized inputs of one instrument's composite scores.
type Terms struct {
	Rp      float64
	Dp      float64
	Bp      float64
	Vp      float64
	Tp      float64
	Prob    float64
	ExpRet  float64
	Sigma   float64
	Pfactor float64
}

// Score = wR*Rp*Pfactor + wD*Dp + wB*(1-Bp) + wV*(1-Vp) + wT*Tp
func (w Weights) Score(t Terms) float64 {
	return w.Return*t.Rp*t.Pfactor +
		w.Distance*t.Dp +
		w.Bollinger*(1-t.Bp) +
		w.VaR*(1-t.Vp) +
		w.Expiry*t.Tp
}

// OptimizedScore = wP*Prob + wE*ExpRet + wS*Sigma + wV*(1-Vp)
func (w Weights) OptimizedScore(t Terms) float64 {
	return w.Prob*t.Prob +
		w.ExpectedReturn*t.ExpRet +
		w.Sigma*t.Sigma +
		w.TailRisk*(1-t.Vp)
}

// Scorer combines batch-normalized metrics into the three score columns.
type Scorer struct {
	weights Weights
}

type ScorerOption func(*Scorer)

// WithWeights overrides the default weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in effect.
func (s *Scorer) Weights() Weights { return s.weights }

// ScoreBatch normalizes across the whole batch and scores every instrument.
// The input is not modified; output order matches input order.
func (s *Scorer) ScoreBatch(batch []models.EnrichedMetrics) []models.ScoredInstrument {
	if len(batch) == 0 {
		return []models.ScoredInstrument{}
	}
	ranges := BuildRanges(batch, NormalizedMetrics...)
	maxOffer := ranges[MetricOffer].Max

	out := make([]models.ScoredInstrument, len(batch))
	for i := range batch {
		e := &batch[i]
		t := TermsFor(ranges, e, maxOffer)
		out[i] = models.ScoredInstrument{
			EnrichedMetrics: *e,
			Score:           s.weights.Score(t),
			OptimizedScore:  s.weights.OptimizedScore(t),
			OpitzScore:      OpitzScore(e.PotentialReturn, e.Offer, e.BollingerWidth, e.VaR95),
		}
	}
	return out
}

// TermsFor computes the normalized terms of e against the batch ranges.
func TermsFor(r Ranges, e *models.EnrichedMetrics, maxOffer float64) Terms {
	return Terms{
		Rp:      r.Normalize(MetricPotentialReturn, e),
		Dp:      r.Normalize(MetricBarrierDistance, e),
		Bp:      r.Normalize(MetricBollingerWidth, e),
		Vp:      r.Normalize(MetricVaR95, e),
		Tp:      r.Normalize(MetricDaysUntilExpiry, e),
		Prob:    r.Normalize(MetricProbStay, e),
		ExpRet:  r.Normalize(MetricExpectedReturn, e),
		Sigma:   r.Normalize(MetricSigmaDistance, e),
		Pfactor: PriceFactor(e.Offer, maxOffer),
	}
}

// PriceFactor = 1 - offer/maxOffer, rewarding cheaper entry. A batch whose
// highest offer is zero gets 0.
func PriceFactor(offer, maxOffer float64) float64 {
	if maxOffer <= 0 {
		return 0
	}
	return clamp01(1 - offer/maxOffer)
}
