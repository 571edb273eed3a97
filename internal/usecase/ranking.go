package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
	domsvc "InlineRank/internal/domain/service"
	"InlineRank/internal/service/cache"
	"InlineRank/internal/services/analytics"
	"InlineRank/pkg/logger"
	"InlineRank/pkg/metrics"
	"InlineRank/pkg/queue"
	"InlineRank/pkg/util"
)

// ErrUnknownSortKey is returned for a sort parameter that names no metric.
var ErrUnknownSortKey = errors.New("unknown sort key")

// RankQuery is a parsed ranking request.
type RankQuery struct {
	Filter domrepo.ProductFilter
	// Sort is nil for the default ordering.
	Sort *analytics.Metric
	Desc bool
}

// ParseRankingRequest turns validated request parameters into a query.
func ParseRankingRequest(req models.RankingRequest) (RankQuery, error) {
	from, err := util.ParseDate(req.CalcDateFrom)
	if err != nil {
		return RankQuery{}, fmt.Errorf("calc_date_from: %w", err)
	}
	to, err := util.ParseDate(req.CalcDateTo)
	if err != nil {
		return RankQuery{}, fmt.Errorf("calc_date_to: %w", err)
	}
	q := RankQuery{
		Filter: domrepo.ProductFilter{
			AssetID:      req.AssetID,
			CalcDateFrom: from,
			CalcDateTo:   to,
			MaxPages:     req.MaxPages,
		},
		Desc: req.Order != "asc",
	}
	if req.Sort != "" {
		m, ok := analytics.ParseMetric(req.Sort)
		if !ok {
			return RankQuery{}, fmt.Errorf("%w: %q", ErrUnknownSortKey, req.Sort)
		}
		q.Sort = &m
	}
	return q, nil
}

// RankingUseCase fetches a product batch, fans out the per-instrument fetches
// and hands the joined inputs to the ranker.
type RankingUseCase struct {
	market    domrepo.MarketData
	ranker    domsvc.Ranker
	archive   domrepo.HistoryArchive
	spots     cache.SpotCache
	publisher domrepo.RankingPublisher
	metrics   domrepo.Metrics
	pool      *queue.Pool
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

type RankingOption func(*RankingUseCase)

func WithArchive(a domrepo.HistoryArchive) RankingOption {
	return func(u *RankingUseCase) { u.archive = a }
}

func WithSpotCache(c cache.SpotCache) RankingOption {
	return func(u *RankingUseCase) { u.spots = c }
}

func WithPublisher(p domrepo.RankingPublisher) RankingOption {
	return func(u *RankingUseCase) { u.publisher = p }
}

func WithMetrics(m domrepo.Metrics) RankingOption {
	return func(u *RankingUseCase) { u.metrics = m }
}

func WithPool(p *queue.Pool) RankingOption {
	return func(u *RankingUseCase) { u.pool = p }
}

func WithLogger(l *logger.Logger) RankingOption {
	return func(u *RankingUseCase) { u.log = l }
}

func WithClock(now func() time.Time) RankingOption {
	return func(u *RankingUseCase) { u.now = now }
}

// WithBatchIDs replaces the uuid generator.
func WithBatchIDs(f func() string) RankingOption {
	return func(u *RankingUseCase) { u.newID = f }
}

func NewRankingUseCase(market domrepo.MarketData, ranker domsvc.Ranker, opts ...RankingOption) *RankingUseCase {
	u := &RankingUseCase{
		market:  market,
		ranker:  ranker,
		metrics: metrics.Nop{},
		pool:    queue.NewPool(queue.QueueConfig{Workers: 20}),
		log:     logger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Rank runs one batch. Only a failed product search fails the call; every
// per-instrument failure degrades that instrument's inputs.
func (u *RankingUseCase) Rank(ctx context.Context, q RankQuery) (*models.Ranking, error) {
	start := u.now()

	products, err := u.market.FetchProductBatch(ctx, q.Filter)
	if err != nil {
		u.metrics.RecordFetchError("products")
		return nil, fmt.Errorf("fetch product batch: %w", err)
	}

	inputs := make([]models.InstrumentInput, len(products))
	jobs := make([]queue.Job, 0, 2*len(products))
	for i := range products {
		inputs[i].Product = products[i]
		in := &inputs[i]
		id := products[i].ID
		jobs = append(jobs,
			queue.JobFunc{N: "history:" + strconv.FormatInt(id, 10), F: func(ctx context.Context) error {
				h, err := u.market.FetchPriceHistory(ctx, id)
				if err != nil {
					return err
				}
				in.History = h
				u.archiveHistory(ctx, id, h)
				return nil
			}},
			u.spotJob(id, in),
		)
	}

	fetchStart := time.Now()
	errs := u.pool.Run(ctx, jobs)
	u.metrics.RecordLatency("fanout", time.Since(fetchStart).Seconds())
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank batch: %w", err)
	}

	for i := range inputs {
		if err := errs[2*i]; err != nil {
			u.metrics.RecordFetchError("history")
			inputs[i].History = u.fallbackHistory(ctx, inputs[i].Product.ID, err)
		}
		if err := errs[2*i+1]; err != nil {
			u.metrics.RecordFetchError("spot")
			u.log.Warn("spot unavailable",
				logger.Int64("id", inputs[i].Product.ID),
				logger.Error(err),
			)
			inputs[i].Spot = nil
		}
	}

	ranking := u.ranker.Rank(inputs)
	ranking.BatchID = u.newID()
	if q.Sort != nil {
		analytics.SortBy(ranking.Rows, *q.Sort, q.Desc)
	} else {
		analytics.SortDefault(ranking.Rows)
	}

	if u.publisher != nil {
		if err := u.publisher.PublishRanking(ctx, ranking); err != nil {
			u.log.Warn("ranking publish failed", logger.String("batch_id", ranking.BatchID), logger.Error(err))
		}
	}

	elapsed := u.now().Sub(start)
	u.metrics.RecordBatch(len(ranking.Rows), len(ranking.Excluded), elapsed.Seconds())
	u.log.Info("batch ranked",
		logger.String("batch_id", ranking.BatchID),
		logger.String("filter", q.Filter.CacheKey()),
		logger.Int("size", len(ranking.Rows)),
		logger.Int("excluded", len(ranking.Excluded)),
		logger.Duration("duration_ms", elapsed),
	)
	return ranking, nil
}

func (u *RankingUseCase) spotJob(id int64, in *models.InstrumentInput) queue.Job {
	looked := false
	return queue.JobFunc{N: "spot:" + strconv.FormatInt(id, 10), F: func(ctx context.Context) error {
		if u.spots != nil && !looked {
			looked = true
			e, ok, err := u.spots.GetSpot(ctx, id)
			if err != nil {
				u.log.Debug("spot cache lookup failed", logger.Int64("id", id), logger.Error(err))
			}
			u.metrics.RecordCacheLookup(ok)
			if ok {
				v := e.Value
				in.Spot = &v
				return nil
			}
		}
		spot, err := u.market.FetchLatestUnderlyingPrice(ctx, id)
		if err != nil {
			return err
		}
		in.Spot = spot
		if spot != nil && u.spots != nil {
			if err := u.spots.SetSpot(ctx, id, cache.SpotEntry{Value: *spot, FetchedAt: u.now()}); err != nil {
				u.log.Debug("spot cache store failed", logger.Int64("id", id), logger.Error(err))
			}
		}
		return nil
	}}
}

func (u *RankingUseCase) archiveHistory(ctx context.Context, id int64, h models.PriceHistory) {
	if u.archive == nil || len(h) == 0 {
		return
	}
	if err := u.archive.SaveHistory(ctx, id, h); err != nil {
		u.log.Warn("history archive write failed", logger.Int64("id", id), logger.Error(err))
	}
}

// fallbackHistory reads the archive after a failed upstream fetch. Anything
// short of a stored history yields an empty one.
func (u *RankingUseCase) fallbackHistory(ctx context.Context, id int64, cause error) models.PriceHistory {
	if u.archive != nil {
		h, err := u.archive.LoadHistory(ctx, id)
		if err == nil && len(h) > 0 {
			u.log.Warn("history from archive",
				logger.Int64("id", id),
				logger.Int("rows", len(h)),
				logger.Error(cause),
			)
			return h
		}
	}
	u.log.Warn("history unavailable", logger.Int64("id", id), logger.Error(cause))
	return models.PriceHistory{}
}
