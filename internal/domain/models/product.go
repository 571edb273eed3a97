package models

import "time"

// Nominal is the fixed redemption amount of an inline warrant that survives its corridor.
const Nominal = 10.0

// ProductSnapshot is one inline warrant as listed by the upstream provider.
// Read-only once fetched.
type ProductSnapshot struct {
	ID           int64     `json:"id"`
	Isin         string    `json:"isin"`
	Code         string    `json:"code"`
	AssetID      int64     `json:"asset_id"`
	AssetName    string    `json:"asset_name"`
	Currency     string    `json:"currency"`
	LowerBarrier float64   `json:"lower_barrier" validate:"gt=0"`
	UpperBarrier float64   `json:"upper_barrier" validate:"gtfield=LowerBarrier"`
	Bid          float64   `json:"bid" validate:"gte=0"`
	Offer        float64   `json:"offer" validate:"gte=0"`
	IssueDate    time.Time `json:"issue_date" validate:"required"`
	MaturityDate time.Time `json:"maturity_date" validate:"required,gtefield=IssueDate"`
}

// PriceObservation is a single day of the instrument's price history.
type PriceObservation struct {
	Date            time.Time `json:"date" ch:"date"`
	UnderlyingPrice float64   `json:"underlying_price" ch:"underlying_price"`
	Bid             float64   `json:"bid" ch:"bid"`
	Ask             float64   `json:"ask" ch:"ask"`
}

// PriceHistory is ordered ascending by date. It may be empty.
type PriceHistory []PriceObservation

// Len, Less and Swap let callers restore chronological order with sort.Sort.
func (h PriceHistory) Len() int           { return len(h) }
func (h PriceHistory) Less(i, j int) bool { return h[i].Date.Before(h[j].Date) }
func (h PriceHistory) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// UnderlyingPrices returns the underlying price series.
func (h PriceHistory) UnderlyingPrices() []float64 {
	out := make([]float64, len(h))
	for i, o := range h {
		out[i] = o.UnderlyingPrice
	}
	return out
}

// Bids returns the bid price series.
func (h PriceHistory) Bids() []float64 {
	out := make([]float64, len(h))
	for i, o := range h {
		out[i] = o.Bid
	}
	return out
}

// InstrumentInput bundles everything the engine needs for one instrument.
// Spot is nil when the latest underlying price could not be obtained.
type InstrumentInput struct {
	Product ProductSnapshot
	History PriceHistory
	Spot    *float64
}
