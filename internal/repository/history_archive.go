package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
	pkgch "InlineRank/pkg/clickhouse"
	applogger "InlineRank/pkg/logger"
)

const historyTable = "price_history"

// HistorySchema creates the archive table. Re-inserted days collapse on merge.
var HistorySchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
		product_id       Int64,
		date             Date,
		underlying_price Float64,
		bid              Float64,
		ask              Float64,
		fetched_at       DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(fetched_at)
	ORDER BY (product_id, date)`,
}

// CHHistoryArchive stores daily price histories in ClickHouse.
type CHHistoryArchive struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.HistoryArchive = (*CHHistoryArchive)(nil)

func NewCHHistoryArchive(ch *pkgch.Client, l *applogger.Logger) *CHHistoryArchive {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistoryArchive{ch: ch, db: ch.DB(), l: l}
}

// Init creates the table if it does not exist.
func (s *CHHistoryArchive) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, HistorySchema)
}

// SaveHistory inserts the history in chunks of multi-row VALUES.
func (s *CHHistoryArchive) SaveHistory(ctx context.Context, productID int64, h models.PriceHistory) error {
	if len(h) == 0 {
		return nil
	}
	const chunkSize = 1000
	for start := 0; start < len(h); start += chunkSize {
		end := start + chunkSize
		if end > len(h) {
			end = len(h)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, o := range h[start:end] {
			if o.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, productID, o.Date.UTC(), o.UnderlyingPrice, o.Bid, o.Ask)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (product_id, date, underlying_price, bid, ask) VALUES %s",
			historyTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse save_history error", applogger.Int64("product_id", productID), applogger.Error(err))
			return fmt.Errorf("save history %d: %w", productID, err)
		}
	}
	return nil
}

// LoadHistory returns the archived history in ascending date order.
func (s *CHHistoryArchive) LoadHistory(ctx context.Context, productID int64) (models.PriceHistory, error) {
	start := time.Now()
	const q = `
		SELECT date, underlying_price, bid, ask
		FROM ` + historyTable + ` FINAL
		WHERE product_id = ?
		ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, productID)
	if err != nil {
		s.l.Error("clickhouse load_history query error", applogger.Int64("product_id", productID), applogger.Error(err))
		return nil, fmt.Errorf("load history %d: %w", productID, err)
	}
	defer rows.Close()

	out := make(models.PriceHistory, 0, 64)
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.Date, &o.UnderlyingPrice, &o.Bid, &o.Ask); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse load_history ok",
		applogger.Int64("product_id", productID),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHHistoryArchive) Close() error { return s.ch.Close() }
