package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InlineRank/internal/domain/models"
)

func TestFixed2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1.005, "1.01"},
		{-2.345, "-2.35"},
		{25, "25.00"},
		{math.NaN(), Missing},
		{math.Inf(1), Missing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed2(tt.in), "%v", tt.in)
	}
}

func TestFixed2Ptr(t *testing.T) {
	assert.Equal(t, Missing, Fixed2Ptr(nil))
	v := 12.3456
	assert.Equal(t, "12.35", Fixed2Ptr(&v))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "70.98", Percent(0.70981))
	assert.Equal(t, "100.00", Percent(1))
}

func scored(id int64, expRet *float64) models.ScoredInstrument {
	var s models.ScoredInstrument
	s.ID = id
	s.Isin = "DE000SQ0000" + string(rune('0'+id))
	s.MaturityDate = time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC)
	s.Offer = 8.2
	s.ProbStay = 0.5
	s.ExpectedReturnPct = expRet
	s.BlackScholesSignal = models.SignalBuy
	s.OptimizedScore = 0.61234
	return s
}

func TestWriteCSV(t *testing.T) {
	ret := -39.0244
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.ScoredInstrument{scored(1, &ret), scored(2, nil)}))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	header := map[string]int{}
	for i, h := range recs[0] {
		header[h] = i
	}
	row1, row2 := recs[1], recs[2]
	assert.Equal(t, "1", row1[header["rank"]])
	assert.Equal(t, "2025-12-19", row1[header["maturity"]])
	assert.Equal(t, "8.20", row1[header["offer"]])
	assert.Equal(t, "50.00", row1[header["prob_stay_pct"]])
	assert.Equal(t, "-39.02", row1[header["expected_return_pct"]])
	assert.Equal(t, "Buy", row1[header["signal"]])
	assert.Equal(t, "0.61", row1[header["optimized_score"]])
	assert.Equal(t, Missing, row2[header["expected_return_pct"]])
}

func TestWriteCSVEmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "rank,id,isin"))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []models.ScoredInstrument{scored(1, nil)}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "DE000SQ00001")
	assert.Contains(t, lines[1], Missing)
}
