package repository

import "time"

// ProductFilter selects the upstream product batch.
type ProductFilter struct {
	AssetID      string
	CalcDateFrom time.Time
	CalcDateTo   time.Time
	MaxPages     int
}

// DefaultMaxPages bounds pagination when the caller does not.
const DefaultMaxPages = 10

// Normalize fills unset fields: the calc window defaults to [now, now+6 months].
func (f ProductFilter) Normalize(now time.Time) ProductFilter {
	if f.CalcDateFrom.IsZero() {
		f.CalcDateFrom = now
	}
	if f.CalcDateTo.IsZero() {
		f.CalcDateTo = f.CalcDateFrom.AddDate(0, 6, 0)
	}
	if f.MaxPages <= 0 {
		f.MaxPages = DefaultMaxPages
	}
	return f
}

// CacheKey identifies the filter in caches and logs.
func (f ProductFilter) CacheKey() string {
	return f.AssetID + "|" + f.CalcDateFrom.Format(time.DateOnly) + "|" + f.CalcDateTo.Format(time.DateOnly)
}
