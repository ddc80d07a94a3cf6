package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultFlushTimeout = 5 * time.Second

// Producer is the subset of *kgo.Client used by KafkaPublisher.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher produces audit events to a Kafka topic keyed by family id, so
// events for one family stay ordered within a partition. Produce is asynchronous;
// delivery failures are logged and never reach the caller.
type KafkaPublisher struct {
	client Producer
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(client Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, logger: logger}
}

// NewKafkaClient dials the seed brokers.
func NewKafkaClient(brokers []string, clientID string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerLinger(50*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic if the cluster does not have it yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	event = normalize(event)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.FamilyID),
		Value: value,
	}
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("failed to deliver audit event",
				"error", err,
				"action", event.Action,
				"topic", r.Topic,
			)
		}
	})
	return nil
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultFlushTimeout)
	defer cancel()
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}
