package broker

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// RabbitMQ is a MessageBroker backed by a RabbitMQ server. The connection and
// channel are established lazily on first use and reused across calls on the
// same instance.
type RabbitMQ struct {
	url    string
	logger *logrus.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitMQ(url string, logger *logrus.Logger) *RabbitMQ {
	return &RabbitMQ{url: url, logger: logger}
}

func (b *RabbitMQ) channel() (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil && !b.ch.IsClosed() {
		return b.ch, nil
	}
	if b.conn == nil || b.conn.IsClosed() {
		conn, err := amqp.Dial(b.url)
		if err != nil {
			return nil, err
		}
		b.conn = conn
	}
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, err
	}
	b.ch = ch
	return ch, nil
}

// Both ends declare the queue so either side can start first; the declaration
// is idempotent.
func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

// Publish declares the queue and sends body as a persistent message on the
// default exchange. Errors propagate to the caller.
func (b *RabbitMQ) Publish(ctx context.Context, queue string, body []byte) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}
	if err := declareQueue(ch, queue); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Consume declares the queue and delivers messages to handler on a dedicated
// goroutine for the lifetime of the process. Prefetch is 1, so deliveries on
// this channel are processed one at a time in arrival order. Multiple process
// instances consuming the same queue compete for messages.
func (b *RabbitMQ) Consume(queue string, handler Handler) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}
	if err := declareQueue(ch, queue); err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := handler(context.Background(), msg.Body)
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case IsPermanent(err):
				b.logger.WithError(err).WithField("queue", queue).Warn("dropping message")
				_ = msg.Ack(false)
			default:
				b.logger.WithError(err).WithField("queue", queue).Error("requeueing message")
				_ = msg.Nack(false, true)
			}
		}
	}()

	b.logger.WithField("queue", queue).Info("listening to queue")
	return nil
}

func (b *RabbitMQ) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil {
		_ = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
