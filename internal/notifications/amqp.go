package notifications

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// AMQPDelivery publishes notifications to a RabbitMQ queue for whatever
// front-end consumes and displays them.
type AMQPDelivery struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

type notificationMessage struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Kind      Kind   `json:"kind"`
	Timestamp string `json:"timestamp"`
}

func NewAMQPDelivery(url, queue string) (*AMQPDelivery, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &AMQPDelivery{conn: conn, channel: channel, queue: queue}, nil
}

func (d *AMQPDelivery) Deliver(title, body string, kind Kind) error {
	msg := notificationMessage{
		Title:     title,
		Body:      body,
		Kind:      kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = d.channel.Publish(
		"",      // default exchange
		d.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Cancel cannot recall an already published message; the consumer side owns
// dismissal. Logged for traceability.
func (d *AMQPDelivery) Cancel(key string) {
	log.Printf("Notification cancel for %s ignored by AMQP delivery", key)
}

func (d *AMQPDelivery) CancelAll() {
	log.Println("Notification cancel-all ignored by AMQP delivery")
}

func (d *AMQPDelivery) Close() error {
	if err := d.channel.Close(); err != nil {
		d.conn.Close()
		return err
	}
	return d.conn.Close()
}
