package repository

import (
	"context"
	"fmt"
	"time"

	"FuelPricer/internal/domain/models"
	domrepo "FuelPricer/internal/domain/repository"
	pkgkafka "FuelPricer/pkg/kafka"
	applogger "FuelPricer/pkg/logger"
)

// KafkaAuditPublisher publishes every accepted recommendation to a Kafka
// topic, keyed by decision date so replays for the same day land on the
// same partition.
type KafkaAuditPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaAuditPublisher(producer *pkgkafka.Producer, topic string) *KafkaAuditPublisher {
	if topic == "" {
		topic = "fuelpricer.recommendations"
	}
	return &KafkaAuditPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaAuditPublisher) SetLogger(l *applogger.Logger) { p.l = l }

type auditEvent struct {
	Date           string                `json:"date"`
	Recommendation models.Recommendation `json:"recommendation"`
	EmittedAt      time.Time             `json:"emitted_at"`
}

func (p *KafkaAuditPublisher) PublishRecommendation(ctx context.Context, ctxDate string, rec models.Recommendation) error {
	event := auditEvent{
		Date:           ctxDate,
		Recommendation: rec,
		EmittedAt:      time.Now().UTC(),
	}

	if err := p.producer.Publish(ctx, p.topic, []byte(ctxDate), event); err != nil {
		if p.l != nil {
			p.l.Error("audit publish failed",
				applogger.String("topic", p.topic),
				applogger.String("date", ctxDate),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("publish recommendation: %w", err)
	}
	return nil
}

func (p *KafkaAuditPublisher) Close() error {
	return p.producer.Close()
}

// NopAuditPublisher discards recommendations. Used when audit publishing
// is disabled in config.
type NopAuditPublisher struct{}

func (NopAuditPublisher) PublishRecommendation(context.Context, string, models.Recommendation) error {
	return nil
}

func (NopAuditPublisher) Close() error { return nil }

var (
	_ domrepo.AuditPublisher = (*KafkaAuditPublisher)(nil)
	_ domrepo.AuditPublisher = NopAuditPublisher{}
)
