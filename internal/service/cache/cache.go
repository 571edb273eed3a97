package cache

import (
	"context"
	"strconv"
	"time"
)

// SpotEntry is a cached underlying price and when it was fetched.
type SpotEntry struct {
	Value     float64   `json:"v"`
	FetchedAt time.Time `json:"t"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e SpotEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.FetchedAt) < ttl
}

// SpotCache keeps last-known spot prices between batches. Only the fetch
// collaborator uses it; the scoring engine never sees it.
type SpotCache interface {
	GetSpot(ctx context.Context, productID int64) (SpotEntry, bool, error)
	SetSpot(ctx context.Context, productID int64, e SpotEntry) error
}

func spotKey(prefix string, productID int64) string {
	return prefix + strconv.FormatInt(productID, 10)
}
