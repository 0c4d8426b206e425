package kafka

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/exmosaul/queteparece/movie/pkg/model"
)

// Ingester defines a Kafka ingester of rating events.
type Ingester struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
	topic    string
}

// NewIngester creates a new Kafka ingester for the given topic.
func NewIngester(addr string, groupID string, topic string, logger *zap.Logger) (*Ingester, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": addr,
		"group.id":          groupID,
	})
	if err != nil {
		return nil, err
	}
	return &Ingester{consumer: consumer, logger: logger, topic: topic}, nil
}

// Ingest subscribes to the topic and streams decoded rating events until the
// context is cancelled. Messages that fail to decode are skipped.
func (i *Ingester) Ingest(ctx context.Context) (chan model.RatingEvent, error) {
	if err := i.consumer.SubscribeTopics([]string{i.topic}, nil); err != nil {
		return nil, err
	}
	ch := make(chan model.RatingEvent, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				i.consumer.Close()
				return
			default:
			}
			msg, err := i.consumer.ReadMessage(-1)
			if err != nil {
				i.logger.Error("Consumer error", zap.Error(err))
				continue
			}
			var event model.RatingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				i.logger.Error("Failed to unmarshal rating event", zap.Error(err))
				continue
			}
			ch <- event
		}
	}()
	return ch, nil
}
