package main

import (
	"log"
	"strings"

	"github.com/nadil1995/notehive2/internal/config"
	"github.com/nadil1995/notehive2/internal/events"
	"github.com/nadil1995/notehive2/internal/kafka"
	"github.com/nadil1995/notehive2/internal/models"

	"github.com/joho/godotenv"
)

// Standalone subscriber for the admin activity stream. Runs next to the API
// server and logs every audit action it sees.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the consumer")
	}

	consumer, err := kafka.NewConsumer(strings.Join(cfg.KafkaBrokers, ","), "notehive-admin-consumer", events.AdminActivityTopic)
	if err != nil {
		log.Fatal("Failed to create consumer:", err)
	}
	defer consumer.Close()

	logEvent := func(event events.AdminEvent) error {
		log.Printf("[%s] admin=%s target=%s details=%v",
			event.Action, event.AdminID, event.TargetUserID, event.Details)
		return nil
	}

	for _, action := range []string{
		models.ActionUserCreated,
		models.ActionUserUpdated,
		models.ActionUserDeleted,
		models.ActionUserSuspended,
		models.ActionPlanChanged,
		models.ActionStorageAdjusted,
		models.ActionPasswordReset,
		models.ActionAdminAccess,
	} {
		consumer.RegisterHandler(action, logEvent)
	}

	log.Printf("Consuming %s from %s", events.AdminActivityTopic, strings.Join(cfg.KafkaBrokers, ","))
	consumer.Start()
}
