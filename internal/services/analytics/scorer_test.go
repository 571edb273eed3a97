package analytics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InlineRank/internal/domain/models"
)

func ptr(v float64) *float64 { return &v }

func enriched(id int64, pr float64) models.EnrichedMetrics {
	return models.EnrichedMetrics{
		ProductSnapshot:    models.ProductSnapshot{ID: id, Offer: 8, Bid: 7.9},
		PotentialReturn:    pr,
		BollingerWidth:     0.1,
		VaR95:              0.2,
		DiffToLower:        5,
		DiffToUpper:        7,
		DaysUntilExpiry:    30,
		ProbStay:           0.8,
		ExpectedReturnPct:  ptr(4),
		SigmaDistanceLower: 1.5,
		SigmaDistanceUpper: 2,
	}
}

func TestNormalizePotentialReturn(t *testing.T) {
	batch := []models.EnrichedMetrics{enriched(1, 1), enriched(2, 2), enriched(3, 3)}
	r := BuildRanges(batch)

	var got []float64
	for i := range batch {
		got = append(got, r.Normalize(MetricPotentialReturn, &batch[i]))
	}
	assert.Equal(t, []float64{0, 0.5, 1}, got)
}

func TestNormalizeConstantAndMissing(t *testing.T) {
	a, b := enriched(1, 5), enriched(2, 5)
	b.ExpectedReturnPct = nil
	batch := []models.EnrichedMetrics{a, b}
	r := BuildRanges(batch)

	assert.Equal(t, 0.5, r.Normalize(MetricPotentialReturn, &batch[0]))
	// the undefined return joins the range as 0
	assert.Equal(t, Range{Min: 0, Max: 4, Count: 2}, r[MetricExpectedReturn])
	assert.Equal(t, 1.0, r.Normalize(MetricExpectedReturn, &batch[0]))
	assert.Equal(t, 0.0, r.Normalize(MetricExpectedReturn, &batch[1]))
	assert.Equal(t, 0.5, Ranges{}.Normalize(MetricVaR95, &batch[0]))
}

func TestZeroOfferAloneNormalizesToMidpoint(t *testing.T) {
	free := enriched(1, 0)
	free.Offer, free.Bid = 0, 0
	free.ExpectedReturnPct = nil
	batch := []models.EnrichedMetrics{free}

	got := TermsFor(BuildRanges(batch), &batch[0], 0)
	want := Terms{Rp: 0.5, Dp: 0.5, Bp: 0.5, Vp: 0.5, Tp: 0.5, Prob: 0.5, ExpRet: 0.5, Sigma: 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("terms mismatch (-want +got):\n%s", diff)
	}

	rows := NewScorer().ScoreBatch(batch)
	assert.InDelta(t, 0.5, rows[0].OptimizedScore, 1e-12)
	assert.Nil(t, rows[0].ExpectedReturnPct)
}

func TestZeroOfferOutranksNegativeReturns(t *testing.T) {
	a, b, free := enriched(1, 5), enriched(2, 5), enriched(3, 0)
	a.ExpectedReturnPct, b.ExpectedReturnPct = ptr(-20), ptr(-5)
	free.Offer, free.ExpectedReturnPct = 0, nil
	batch := []models.EnrichedMetrics{a, b, free}
	r := BuildRanges(batch)

	assert.Equal(t, 0.0, r.Normalize(MetricExpectedReturn, &batch[0]))
	assert.InDelta(t, 0.75, r.Normalize(MetricExpectedReturn, &batch[1]), 1e-12)
	assert.Equal(t, 1.0, r.Normalize(MetricExpectedReturn, &batch[2]))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 0.5, MinMax(3, 3, 3))
	assert.Equal(t, 0.25, MinMax(2, 1, 5))
	assert.Equal(t, 1.0, MinMax(9, 1, 5))
}

func TestScoreSingleInstrument(t *testing.T) {
	rows := NewScorer().ScoreBatch([]models.EnrichedMetrics{enriched(1, 25)})
	require.Len(t, rows, 1)

	// every normalized term is 0.5; the only offer is the max so Pfactor is 0
	assert.InDelta(t, 0.20*0.5+0.15*0.5+0.15*0.5+0.25*0.5, rows[0].Score, 1e-12)
	assert.InDelta(t, 0.5, rows[0].OptimizedScore, 1e-12)
}

func TestScoreDegenerateBatchIsFlat(t *testing.T) {
	batch := []models.EnrichedMetrics{enriched(1, 10), enriched(2, 10), enriched(3, 10)}
	rows := NewScorer().ScoreBatch(batch)
	for _, r := range rows[1:] {
		assert.Equal(t, rows[0].Score, r.Score)
		assert.Equal(t, rows[0].OptimizedScore, r.OptimizedScore)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	batch := mixedBatch()
	s := NewScorer()
	first := s.ScoreBatch(batch)
	second := s.ScoreBatch(batch)
	assert.Empty(t, cmp.Diff(first, second))
	assert.Empty(t, cmp.Diff(mixedBatch(), batch), "input must not be modified")
}

func TestScoresStayInUnitInterval(t *testing.T) {
	for _, r := range NewScorer().ScoreBatch(mixedBatch()) {
		for _, v := range []float64{r.Score, r.OptimizedScore} {
			require.False(t, math.IsNaN(v), "id %d", r.ID)
			assert.GreaterOrEqual(t, v, 0.0, "id %d", r.ID)
			assert.LessOrEqual(t, v, 1.0, "id %d", r.ID)
		}
	}
}

func TestZeroOfferDoesNotPoisonScores(t *testing.T) {
	batch := mixedBatch()
	free := enriched(99, 0)
	free.Offer = 0
	free.ExpectedReturnPct = nil
	batch = append(batch, free)

	rows := NewScorer().ScoreBatch(batch)
	last := rows[len(rows)-1]
	assert.Nil(t, last.ExpectedReturnPct)
	assert.False(t, math.IsNaN(last.Score) || math.IsInf(last.Score, 0))
	assert.False(t, math.IsNaN(last.OptimizedScore) || math.IsInf(last.OptimizedScore, 0))
}

func TestWithWeights(t *testing.T) {
	w := Weights{Prob: 1}
	rows := NewScorer(WithWeights(w)).ScoreBatch(mixedBatch())
	for _, r := range rows {
		assert.Zero(t, r.Score)
	}
	// highest probStay normalizes to 1
	assert.Equal(t, 1.0, rows[2].OptimizedScore)
}

func TestPriceFactor(t *testing.T) {
	assert.Equal(t, 0.0, PriceFactor(5, 0))
	assert.InDelta(t, 0.5, PriceFactor(5, 10), 1e-12)
	assert.Equal(t, 0.0, PriceFactor(10, 10))
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Return+w.Distance+w.Bollinger+w.VaR+w.Expiry, 1e-12)
	assert.InDelta(t, 1.0, w.Prob+w.ExpectedReturn+w.Sigma+w.TailRisk, 1e-12)
}

func mixedBatch() []models.EnrichedMetrics {
	a := enriched(1, 25)
	b := enriched(2, 5)
	b.Offer, b.VaR95, b.ProbStay, b.DaysUntilExpiry = 9.5, 0.05, 0.6, 10
	c := enriched(3, 60)
	c.Offer, c.BollingerWidth, c.ProbStay, c.ExpectedReturnPct = 6.25, 0.4, 0.95, ptr(-10)
	c.SigmaDistanceLower, c.SigmaDistanceUpper = SafeSigmaDistance, SafeSigmaDistance
	return []models.EnrichedMetrics{a, b, c}
}
