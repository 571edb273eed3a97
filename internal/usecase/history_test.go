package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InlineRank/internal/domain/models"
	"InlineRank/internal/services/features"
)

func TestHistoryFromUpstream(t *testing.T) {
	m := market()
	archive := newFakeArchive()
	uc := NewHistoryUseCase(m, archive, features.NewCalculator(20, 0.95), nil)

	got, err := uc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, got.Source)
	assert.Len(t, got.Observations, 40)
	assert.Positive(t, got.Stats.Volatility)
	assert.Len(t, archive.saved[1], 40)
}

func TestHistoryFallsBackToArchive(t *testing.T) {
	m := market()
	archive := newFakeArchive()
	archive.saved[2] = history(25)
	m.historyErr = map[int64]error{2: errTimeout}
	uc := NewHistoryUseCase(m, archive, features.NewCalculator(20, 0.95), nil)

	got, err := uc.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, SourceArchive, got.Source)
	assert.Len(t, got.Observations, 25)
}

func TestHistoryUnavailable(t *testing.T) {
	m := market()
	m.historyErr = map[int64]error{2: errTimeout}
	uc := NewHistoryUseCase(m, newFakeArchive(), features.NewCalculator(20, 0.95), nil)

	_, err := uc.History(context.Background(), 2)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestHistoryShortSeries(t *testing.T) {
	m := market()
	m.histories[1] = history(5)
	uc := NewHistoryUseCase(m, nil, features.NewCalculator(20, 0.95), nil)

	got, err := uc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeriesStats{}, got.Stats)
}

func TestHistoryEmptyIsNotNil(t *testing.T) {
	m := market()
	delete(m.histories, 3)
	got, err := NewHistoryUseCase(m, nil, features.NewCalculator(20, 0.95), nil).History(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, got.Observations)
	assert.Empty(t, got.Observations)
}
