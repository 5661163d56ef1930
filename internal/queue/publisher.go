package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/eonhq/eon-backend/internal/logger"
)

const notificationQueueName = "event.notifications"

// Publisher sends notification events to the broker.  It dials a
// fresh connection per publish, which keeps the implementation robust
// against broker restarts at the cost of some latency; notification
// volume here does not justify connection pooling.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish marshals the event and publishes it to the durable
// event.notifications queue.  Any error is logged and returned so the
// caller can choose to ignore it; dispatch failures must never fail
// the request that triggered them.
func (p *Publisher) Publish(ctx context.Context, event NotificationEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		notificationQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		logger.Log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Log.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		notificationQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		logger.Log.Warn("rabbitmq: publish failed",
			zap.String("action", event.Action), zap.Error(err))
		return err
	}

	return nil
}
