package usecase

import (
	"context"
	"errors"
	"fmt"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
	domsvc "InlineRank/internal/domain/service"
	"InlineRank/pkg/logger"
)

// ErrHistoryUnavailable means neither upstream nor the archive had the history.
var ErrHistoryUnavailable = errors.New("history unavailable")

const (
	SourceUpstream = "upstream"
	SourceArchive  = "archive"
)

// HistoryUseCase serves the single-instrument history view.
type HistoryUseCase struct {
	market  domrepo.HistorySource
	archive domrepo.HistoryArchive
	stats   domsvc.StatsCalculator
	log     *logger.Logger
}

func NewHistoryUseCase(market domrepo.HistorySource, archive domrepo.HistoryArchive, stats domsvc.StatsCalculator, l *logger.Logger) *HistoryUseCase {
	if l == nil {
		l = logger.Nop()
	}
	return &HistoryUseCase{market: market, archive: archive, stats: stats, log: l}
}

func (u *HistoryUseCase) History(ctx context.Context, id int64) (*models.InstrumentHistory, error) {
	h, err := u.market.FetchPriceHistory(ctx, id)
	source := SourceUpstream
	if err != nil {
		u.log.Warn("history fetch failed", logger.Int64("id", id), logger.Error(err))
		if u.archive == nil {
			return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
		}
		archived, aerr := u.archive.LoadHistory(ctx, id)
		if aerr != nil || len(archived) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
		}
		h, source = archived, SourceArchive
	} else if u.archive != nil && len(h) > 0 {
		if err := u.archive.SaveHistory(ctx, id, h); err != nil {
			u.log.Warn("history archive write failed", logger.Int64("id", id), logger.Error(err))
		}
	}
	if h == nil {
		h = models.PriceHistory{}
	}
	return &models.InstrumentHistory{
		ProductID:    id,
		Source:       source,
		Observations: h,
		Stats:        u.stats.Compute(h),
	}, nil
}
