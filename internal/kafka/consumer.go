package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nadil1995/notehive2/internal/events"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type AdminEventHandler func(event events.AdminEvent) error

type Consumer struct {
	consumer *kafka.Consumer
	handlers map[string][]AdminEventHandler
	topic    string
}

// NewConsumer creates a new Kafka consumer for the admin activity stream
func NewConsumer(bootstrapServers, groupID, topic string) (*Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"group.id":          groupID,
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics([]string{topic}, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	return &Consumer{
		consumer: c,
		handlers: make(map[string][]AdminEventHandler),
		topic:    topic,
	}, nil
}

// RegisterHandler registers a handler for a specific audit action
func (c *Consumer) RegisterHandler(action string, handler AdminEventHandler) {
	c.handlers[action] = append(c.handlers[action], handler)
}

// Start consumes messages until SIGINT/SIGTERM.
func (c *Consumer) Start() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	run := true
	for run {
		select {
		case sig := <-sigchan:
			fmt.Printf("Caught signal %v: terminating\n", sig)
			run = false
		default:
			ev, err := c.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				// timeouts are informational, keep polling
				continue
			}

			var event events.AdminEvent
			if err := json.Unmarshal(ev.Value, &event); err != nil {
				log.Printf("Failed to unmarshal admin event: %v", err)
				continue
			}

			if handlers, ok := c.handlers[event.Action]; ok {
				for _, handler := range handlers {
					if err := handler(event); err != nil {
						log.Printf("Error handling event %s: %v", event.Action, err)
					}
				}
			}
		}
	}

	c.consumer.Close()
}

// Close the consumer
func (c *Consumer) Close() {
	c.consumer.Close()
}
