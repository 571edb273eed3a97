package repository

import (
	"context"
	"strconv"

	"InlineRank/internal/domain/models"
	domrepo "InlineRank/internal/domain/repository"
	pkgkafka "InlineRank/pkg/kafka"
)

// RankingEvent is the record written per ranked instrument.
type RankingEvent struct {
	BatchID string `json:"batch_id"`
	Rank    int    `json:"rank"`
	models.ScoredInstrument
}

// KafkaRankingPublisher writes one message per row, keyed by ISIN so every
// instrument stays on one partition.
type KafkaRankingPublisher struct {
	p *pkgkafka.Producer
}

var _ domrepo.RankingPublisher = (*KafkaRankingPublisher)(nil)

func NewKafkaRankingPublisher(p *pkgkafka.Producer) *KafkaRankingPublisher {
	return &KafkaRankingPublisher{p: p}
}

func (k *KafkaRankingPublisher) PublishRanking(ctx context.Context, r *models.Ranking) error {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(r.Rows))
	for i, row := range r.Rows {
		key := row.Isin
		if key == "" {
			key = strconv.FormatInt(row.ID, 10)
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(key),
			Value: RankingEvent{BatchID: r.BatchID, Rank: i + 1, ScoredInstrument: row},
			Headers: map[string]string{
				"batch_id":   r.BatchID,
				"batch_size": strconv.Itoa(len(r.Rows)),
			},
		})
	}
	return k.p.PublishBatch(ctx, msgs)
}

func (k *KafkaRankingPublisher) Close() error { return k.p.Close() }

// NoopPublisher drops rankings. Used when Kafka is disabled.
type NoopPublisher struct{}

var _ domrepo.RankingPublisher = NoopPublisher{}

func (NoopPublisher) PublishRanking(context.Context, *models.Ranking) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
