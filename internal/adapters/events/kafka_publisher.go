package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes outbox events to Kafka, one topic per event type unless remapped.
type KafkaPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topicByEvent: topicByEvent,
	}, nil
}

// TopicFor resolves the destination topic of an event type.
func (p *KafkaPublisher) TopicFor(eventType string) string {
	if mapped, ok := p.topicByEvent[eventType]; ok && mapped != "" {
		return mapped
	}
	return eventType
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, partitionKey string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.TopicFor(eventType),
		Key:   []byte(partitionKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
		Time: time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
