package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
)

var (
	testNow    = time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	errTimeout = errors.New("upstream timeout")
)

func snapshot(id int64, offer float64) models.ProductSnapshot {
	return models.ProductSnapshot{
		ID:           id,
		Isin:         "DE000SQ" + string(rune('A'+id)),
		LowerBarrier: 90,
		UpperBarrier: 110,
		Bid:          offer - 0.1,
		Offer:        offer,
		IssueDate:    testNow.AddDate(0, -3, 0),
		MaturityDate: testNow.AddDate(0, 0, int(30*id)),
	}
}

func history(n int) models.PriceHistory {
	h := make(models.PriceHistory, n)
	for i := range h {
		h[i] = models.PriceObservation{
			Date:            testNow.AddDate(0, 0, i-n),
			UnderlyingPrice: 98 + 4*float64(i%2),
			Bid:             7 + 0.02*float64(i%3),
		}
	}
	return h
}

type fakeMarket struct {
	mu          sync.Mutex
	products    []models.ProductSnapshot
	productsErr error
	histories   map[int64]models.PriceHistory
	historyErr  map[int64]error
	spots       map[int64]float64
	spotErr     map[int64]error
	spotCalls   int
	lastFilter  domrepo.ProductFilter
}

func (f *fakeMarket) FetchProductBatch(_ context.Context, filter domrepo.ProductFilter) ([]models.ProductSnapshot, error) {
	f.lastFilter = filter
	return f.products, f.productsErr
}

func (f *fakeMarket) FetchPriceHistory(_ context.Context, id int64) (models.PriceHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.historyErr[id]; err != nil {
		return nil, err
	}
	return f.histories[id], nil
}

func (f *fakeMarket) FetchLatestUnderlyingPrice(_ context.Context, id int64) (*float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spotCalls++
	if err := f.spotErr[id]; err != nil {
		return nil, err
	}
	v, ok := f.spots[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	saved map[int64]models.PriceHistory
}

func newFakeArchive() *fakeArchive { return &fakeArchive{saved: map[int64]models.PriceHistory{}} }

func (a *fakeArchive) SaveHistory(_ context.Context, id int64, h models.PriceHistory) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved[id] = h
	return nil
}

func (a *fakeArchive) LoadHistory(_ context.Context, id int64) (models.PriceHistory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved[id], nil
}

func (a *fakeArchive) Close() error { return nil }

type fakePublisher struct {
	got []*models.Ranking
	err error
}

func (p *fakePublisher) PublishRanking(_ context.Context, r *models.Ranking) error {
	p.got = append(p.got, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu          sync.Mutex
	batches     int
	lastSize    int
	lastExcl    int
	fetchErrors map[string]int
	hits        int
	misses      int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{fetchErrors: map[string]int{}} }

func (m *fakeMetrics) RecordBatch(size, excluded int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.lastSize, m.lastExcl = size, excluded
}

func (m *fakeMetrics) RecordFetchError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErrors[kind]++
}

func (m *fakeMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

// flakyMarket fails the first history fetches of every instrument.
type flakyMarket struct {
	*fakeMarket
	failures int
	seen     map[int64]int
}

func (f *flakyMarket) FetchPriceHistory(ctx context.Context, id int64) (models.PriceHistory, error) {
	f.mu.Lock()
	if f.seen == nil {
		f.seen = map[int64]int{}
	}
	f.seen[id]++
	n := f.seen[id]
	f.mu.Unlock()
	if n <= f.failures {
		return nil, errTimeout
	}
	return f.fakeMarket.FetchPriceHistory(ctx, id)
}
