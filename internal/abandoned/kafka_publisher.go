package abandoned

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

const remarketingTopic = "abandoned-carts"

// KafkaPublisher hands snapshots to the remarketing pipeline. A circuit
// breaker sits in front of the writer so a down broker fails fast instead
// of eating the publish timeout on every checkout.
type KafkaPublisher struct {
	writer  *kafka.Writer
	breaker *gobreaker.CircuitBreaker[any]
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  remarketingTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           3 * time.Second,
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "abandoned-carts-kafka",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &KafkaPublisher{writer: w, breaker: breaker}
}

func (p *KafkaPublisher) Publish(ctx context.Context, snap *domain.AbandonedCartSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(snap.Email), // per-customer ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(snap.Source)},
		},
	}

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
