// Package events publishes catalog run output to Kafka for downstream
// indexers. Publishing is optional: the pipeline's own output is the files
// on disk, the events are documentation of the run.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

const eventSource = "inkwell-catalog"

// Publisher wraps a Kafka producer with the catalog topics.
type Publisher struct {
	producer *kafka.Producer
	logger   *logrus.Logger
	cards    string
	mappings string
}

func NewPublisher(cfg config.KafkaConfig, logger *logrus.Logger) (*Publisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         eventSource,
		"acks":              "all",
		"retries":           10,
		"retry.backoff.ms":  100,
		"compression.type":  "snappy",
		"linger.ms":         10,
		"batch.size":        16384,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	pub := &Publisher{
		producer: p,
		logger:   logger,
		cards:    cfg.CardsTopic,
		mappings: cfg.MigrationsTopic,
	}
	go pub.handleDeliveryReports()
	return pub, nil
}

func (p *Publisher) handleDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Errorf("Delivery failed: %v", ev.TopicPartition.Error)
			} else {
				p.logger.Debugf("Delivered message to %v", ev.TopicPartition)
			}
		}
	}
}

// PublishCard publishes one canonical card event keyed by entity ID.
func (p *Publisher) PublishCard(card models.CanonicalCard) error {
	event := models.CardEvent{
		CatalogEvent: envelope("card.updated"),
		Card:         card,
	}
	return p.publish(p.cards, card.EntityID, "card.updated", event)
}

// PublishMigration publishes one migration entry keyed by the old entity ID.
func (p *Publisher) PublishMigration(entry models.MigrationEntry) error {
	event := models.MigrationEvent{
		CatalogEvent: envelope("migration.created"),
		Mapping:      entry,
	}
	return p.publish(p.mappings, entry.OldEntityID, "migration.created", event)
}

func (p *Publisher) publish(topic, key, eventType string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "source", Value: []byte(eventSource)},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce %s message: %w", eventType, err)
	}
	return nil
}

func envelope(eventType string) models.CatalogEvent {
	return models.CatalogEvent{
		EventType: eventType,
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "v1",
	}
}

// Flush waits for outstanding messages to be delivered.
func (p *Publisher) Flush(timeoutMs int) int {
	return p.producer.Flush(timeoutMs)
}

// Close closes the underlying producer.
func (p *Publisher) Close() {
	p.producer.Close()
}
