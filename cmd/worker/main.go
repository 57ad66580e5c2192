// cmd/worker/main.go
//
// Consumes campaign_events from RabbitMQ and persists each delivery outcome
// to the delivery_log table.
package main

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/mailpilot/mailpilot-backend/internal/config"
	"github.com/mailpilot/mailpilot-backend/internal/db"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
	"github.com/mailpilot/mailpilot-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, relying on OS environment variables")
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer conn.Close()

	deliveryRepo := &repository.DeliveryLogRepository{DB: conn}

	amqpConn, err := amqp.Dial(mustEnv("AMQP_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open a channel")
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.EventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to declare queue")
	}

	if err := ch.Qos(config.GetInt("WORKER_PREFETCH", 10), 0, false); err != nil {
		log.Fatal().Err(err).Msg("failed to set prefetch")
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register consumer")
	}

	log.Info().Str("queue", q.Name).Msg("worker running, waiting for events")

	for d := range msgs {
		var ev model.DeliveryEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Warn().Err(err).Msg("invalid event payload")
			d.Ack(false)
			continue
		}

		if err := deliveryRepo.Insert(&ev); err != nil {
			log.Error().Err(err).Str("recipient", ev.Recipient).Msg("failed to persist event")

			// One requeue per message; a second failure is dropped
			// rather than looping forever.
			if !d.Redelivered {
				d.Nack(false, true)
				continue
			}
		}

		d.Ack(false)
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal().Str("key", key).Msg("required environment variable missing")
	}
	return v
}
