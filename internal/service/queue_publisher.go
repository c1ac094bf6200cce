// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/avereth/testing-center/internal/queue"
)

const recordExchange = "records.changed"

// PublishRecordChanged broadcasts a RecordEvent on the record fanout
// exchange so every running server instance can refresh its live
// scheduling views.  The function never panics; any error is logged and
// returned so the caller can choose to ignore it (a missed broadcast is
// recovered on the next snapshot fetch).
func PublishRecordChanged(ctx context.Context, event q.RecordEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the exchange exists (idempotent).  Fanout: one copy per bound
	// consumer queue.
	if err := ch.ExchangeDeclare(
		recordExchange, // name
		"fanout",       // kind
		false,          // durable
		false,          // autoDelete
		false,          // internal
		false,          // noWait
		nil,            // args
	); err != nil {
		log.Printf("rabbitmq: exchange declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	}

	if err := ch.PublishWithContext(ctx,
		recordExchange, // exchange
		"",             // routing key unused by fanout
		false,          // mandatory
		false,          // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
