package models

import (
	"encoding/json"
	"fmt"
)

// Signal is the discrete fair-value verdict of the barrier model.
type Signal int

const (
	SignalSell Signal = iota
	SignalFair
	SignalBuy
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "Buy"
	case SignalSell:
		return "Sell"
	default:
		return "Fair"
	}
}

// Rank orders signals for sorting: Buy > Fair > Sell.
func (s Signal) Rank() float64 { return float64(s) }

func (s Signal) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Signal) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "Buy":
		*s = SignalBuy
	case "Sell":
		*s = SignalSell
	case "Fair":
		*s = SignalFair
	default:
		return fmt.Errorf("unknown signal %q", v)
	}
	return nil
}

// SeriesStats holds the history-derived statistics of one instrument.
type SeriesStats struct {
	Volatility     float64 `json:"volatility"`
	BollingerWidth float64 `json:"bollinger_width"`
	VaR95          float64 `json:"var95"`
}

// EnrichedMetrics are the per-instrument derived fields. Each one depends only on
// the instrument's own snapshot and history.
type EnrichedMetrics struct {
	ProductSnapshot

	UnderlyingPrice    float64  `json:"underlying_price"`
	RangePercent       float64  `json:"range_percent"`
	Spread             float64  `json:"spread"`
	DaysUntilExpiry    int      `json:"days_until_expiry"`
	DaysRunning        int      `json:"days_running"`
	DiffToLower        float64  `json:"diff_to_lower"`
	DiffToUpper        float64  `json:"diff_to_upper"`
	Volatility         float64  `json:"volatility"`
	BollingerWidth     float64  `json:"bollinger_width"`
	VaR95              float64  `json:"var95"`
	SigmaDistanceLower float64  `json:"sigma_distance_lower"`
	SigmaDistanceUpper float64  `json:"sigma_distance_upper"`
	ProbStay           float64  `json:"prob_stay"`
	ExpectedProfit     float64  `json:"expected_profit"`
	ExpectedReturnPct  *float64 `json:"expected_return_pct"`
	BlackScholesPrice  float64  `json:"black_scholes_price"`
	BlackScholesSignal Signal   `json:"black_scholes_signal"`
	PotentialReturn    float64  `json:"potential_return"`
}

// ScoredInstrument carries the batch-relative scores. They are only meaningful
// within the batch they were computed for.
type ScoredInstrument struct {
	EnrichedMetrics

	Score          float64 `json:"score"`
	OptimizedScore float64 `json:"optimized_score"`
	OpitzScore     float64 `json:"opitz_score"`
}

// Exclusion records an instrument dropped from a batch because its snapshot was invalid.
type Exclusion struct {
	ID     int64  `json:"id"`
	Isin   string `json:"isin,omitempty"`
	Reason string `json:"reason"`
}

// Ranking is one fully scored batch.
type Ranking struct {
	BatchID  string             `json:"batch_id"`
	Rows     []ScoredInstrument `json:"rows"`
	Excluded []Exclusion        `json:"excluded,omitempty"`
}

// InstrumentHistory is the single-instrument history view.
type InstrumentHistory struct {
	ProductID    int64        `json:"product_id"`
	Source       string       `json:"source"`
	Observations PriceHistory `json:"observations"`
	Stats        SeriesStats  `json:"stats"`
}
