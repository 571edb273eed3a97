package cache

import "context"

var _ SpotCache = (*LayeredSpotCache)(nil)

// LayeredSpotCache reads memory first, then Redis, and writes through both.
type LayeredSpotCache struct {
	l1 *MemorySpotCache
	l2 SpotCache
}

func NewLayeredSpotCache(l1 *MemorySpotCache, l2 SpotCache) *LayeredSpotCache {
	return &LayeredSpotCache{l1: l1, l2: l2}
}

func (c *LayeredSpotCache) GetSpot(ctx context.Context, productID int64) (SpotEntry, bool, error) {
	if e, ok, _ := c.l1.GetSpot(ctx, productID); ok {
		return e, true, nil
	}
	e, ok, err := c.l2.GetSpot(ctx, productID)
	if err != nil || !ok {
		return SpotEntry{}, false, err
	}
	_ = c.l1.SetSpot(ctx, productID, e)
	return e, true, nil
}

func (c *LayeredSpotCache) SetSpot(ctx context.Context, productID int64, e SpotEntry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = c.l1.now()
	}
	if err := c.l2.SetSpot(ctx, productID, e); err != nil {
		return err
	}
	return c.l1.SetSpot(ctx, productID, e)
}
