package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InlineRank/internal/domain/models"
	pkgch "InlineRank/pkg/clickhouse"
)

func day(d int) time.Time { return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC) }

func newMockArchive(t *testing.T) (*CHHistoryArchive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCHHistoryArchive(pkgch.NewFromDB(db), nil), mock
}

func TestCHHistoryArchiveSave(t *testing.T) {
	a, mock := newMockArchive(t)
	h := models.PriceHistory{
		{Date: day(1), UnderlyingPrice: 70, Bid: 7.9, Ask: 8},
		{Date: time.Time{}, UnderlyingPrice: 1},
		{Date: day(2), UnderlyingPrice: 71, Bid: 8, Ask: 8.1},
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO price_history (product_id, date, underlying_price, bid, ask) VALUES (?, ?, ?, ?, ?),(?, ?, ?, ?, ?)")).
		WithArgs(int64(7), day(1), 70.0, 7.9, 8.0, int64(7), day(2), 71.0, 8.0, 8.1).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, a.SaveHistory(context.Background(), 7, h))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistoryArchiveSaveEmpty(t *testing.T) {
	a, mock := newMockArchive(t)
	require.NoError(t, a.SaveHistory(context.Background(), 7, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistoryArchiveSaveError(t *testing.T) {
	a, mock := newMockArchive(t)
	mock.ExpectExec("INSERT INTO price_history").WillReturnError(errors.New("readonly"))
	err := a.SaveHistory(context.Background(), 7, models.PriceHistory{{Date: day(1), UnderlyingPrice: 70}})
	assert.ErrorContains(t, err, "save history 7")
}

func TestCHHistoryArchiveLoad(t *testing.T) {
	a, mock := newMockArchive(t)
	rows := sqlmock.NewRows([]string{"date", "underlying_price", "bid", "ask"}).
		AddRow(day(1), 70.0, 7.9, 8.0).
		AddRow(day(2), 71.0, 8.0, 8.1)
	mock.ExpectQuery("SELECT date, underlying_price, bid, ask").WithArgs(int64(7)).WillReturnRows(rows)

	h, err := a.LoadHistory(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 71}, h.UnderlyingPrices())
	assert.Equal(t, day(2), h[1].Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistoryArchiveInit(t *testing.T) {
	a, mock := newMockArchive(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS price_history").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, a.Init(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryHistoryArchive(t *testing.T) {
	a := NewMemoryHistoryArchive()
	ctx := context.Background()

	h, err := a.LoadHistory(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, h)

	src := models.PriceHistory{{Date: day(1), UnderlyingPrice: 70}}
	require.NoError(t, a.SaveHistory(ctx, 1, src))
	src[0].UnderlyingPrice = 0

	h, err = a.LoadHistory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{70}, h.UnderlyingPrices())
}
