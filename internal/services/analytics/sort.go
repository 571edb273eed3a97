package analytics

import (
	"sort"

	"InlineRank/internal/domain/models"
)

// SortDefault orders rows by days until expiry, then range percent, both ascending.
func SortDefault(rows []models.ScoredInstrument) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if a.DaysUntilExpiry != b.DaysUntilExpiry {
			return a.DaysUntilExpiry < b.DaysUntilExpiry
		}
		if a.RangePercent != b.RangePercent {
			return a.RangePercent < b.RangePercent
		}
		return a.ID < b.ID
	})
}

// SortBy orders rows by one metric. Missing values sink to the end in either
// direction; ties fall back to instrument id.
func SortBy(rows []models.ScoredInstrument, m Metric, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		va, okA := m.Value(a)
		vb, okB := m.Value(b)
		switch {
		case okA != okB:
			return okA
		case okA && va != vb:
			if desc {
				return va > vb
			}
			return va < vb
		default:
			return a.ID < b.ID
		}
	})
}
