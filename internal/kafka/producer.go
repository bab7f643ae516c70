package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nadil1995/notehive2/internal/events"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	adminWriter *kafka.Writer
	assetWriter *kafka.Writer
}

// NewProducer creates a new Kafka producer with writers for different topics
func NewProducer(brokers []string) *Producer {
	adminWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.AdminActivityTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	assetWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.AssetChangesTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{
		adminWriter: adminWriter,
		assetWriter: assetWriter,
	}
}

// PublishAdminEvent publishes an admin event to the admin.activity topic
func (p *Producer) PublishAdminEvent(ctx context.Context, event *events.AdminEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal admin event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.AdminID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.adminWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish admin event: %v", err)
		return err
	}

	log.Printf("Published admin event: %s by admin %s", event.Action, event.AdminID)
	return nil
}

// PublishAssetEvent publishes an asset event to the asset.changes topic
func (p *Producer) PublishAssetEvent(ctx context.Context, event *events.AssetEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal asset event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.AssetID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.assetWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish asset event: %v", err)
		return err
	}

	log.Printf("Published asset event: %s for %s %s", event.EventType, event.AssetType, event.AssetID)
	return nil
}

// Close closes the Kafka writers
func (p *Producer) Close() error {
	var err1, err2 error
	if p.adminWriter != nil {
		err1 = p.adminWriter.Close()
	}
	if p.assetWriter != nil {
		err2 = p.assetWriter.Close()
	}

	if err1 != nil {
		return err1
	}
	return err2
}
