package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"InlineRank/internal/domain/models"
	domsvc "InlineRank/internal/domain/service"
	"InlineRank/pkg/logger"
)

var _ domsvc.Ranker = (*Engine)(nil)

// Engine validates, enriches and scores one batch. It holds no batch state.
type Engine struct {
	enricher *Enricher
	scorer   *Scorer
	validate *validator.Validate
	log      *logger.Logger
}

type EngineOption func(*engineOptions)

type engineOptions struct {
	stats  domsvc.StatsCalculator
	now    func() time.Time
	scorer *Scorer
	log    *logger.Logger
}

func WithStatsCalculator(c domsvc.StatsCalculator) EngineOption {
	return func(o *engineOptions) { o.stats = c }
}

// WithClock fixes "today" for day counts.
func WithClock(now func() time.Time) EngineOption {
	return func(o *engineOptions) { o.now = now }
}

func WithScorer(s *Scorer) EngineOption {
	return func(o *engineOptions) { o.scorer = s }
}

func WithLogger(l *logger.Logger) EngineOption {
	return func(o *engineOptions) { o.log = l }
}

func NewEngine(opts ...EngineOption) *Engine {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.scorer == nil {
		o.scorer = NewScorer()
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	return &Engine{
		enricher: NewEnricher(o.stats, o.now),
		scorer:   o.scorer,
		validate: validator.New(),
		log:      o.log,
	}
}

// Weights returns the score weights the engine ranks with.
func (e *Engine) Weights() Weights { return e.scorer.Weights() }

// Rank scores the valid inputs against each other. Invalid snapshots are
// listed in Excluded and never reach the batch ranges. Row order follows input order.
func (e *Engine) Rank(inputs []models.InstrumentInput) *models.Ranking {
	enriched := make([]models.EnrichedMetrics, 0, len(inputs))
	var excluded []models.Exclusion

	for _, in := range inputs {
		if err := e.Validate(&in.Product); err != nil {
			var inv *InvalidSnapshotError
			reason := err.Error()
			if errors.As(err, &inv) {
				reason = inv.Reason
			}
			e.log.Warn("instrument excluded",
				logger.Int64("id", in.Product.ID),
				logger.String("isin", in.Product.Isin),
				logger.String("reason", reason),
			)
			excluded = append(excluded, models.Exclusion{ID: in.Product.ID, Isin: in.Product.Isin, Reason: reason})
			continue
		}
		enriched = append(enriched, e.enricher.Enrich(in))
	}

	return &models.Ranking{
		Rows:     e.scorer.ScoreBatch(enriched),
		Excluded: excluded,
	}
}

// Validate checks the snapshot preconditions. Failures are *InvalidSnapshotError.
func (e *Engine) Validate(p *models.ProductSnapshot) error {
	prices := []struct {
		name string
		v    float64
	}{
		{"LowerBarrier", p.LowerBarrier},
		{"UpperBarrier", p.UpperBarrier},
		{"Bid", p.Bid},
		{"Offer", p.Offer},
	}
	for _, f := range prices {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidSnapshotError{ID: p.ID, Reason: f.name + " is not finite"}
		}
	}

	err := e.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &InvalidSnapshotError{ID: p.ID, Reason: err.Error()}
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describe(fe))
	}
	return &InvalidSnapshotError{ID: p.ID, Reason: strings.Join(reasons, "; ")}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
