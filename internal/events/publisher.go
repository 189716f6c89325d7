// Package events publica eventos de dominio en RabbitMQ. Los errores se
// devuelven para que el llamador los registre; nunca interrumpen el flujo principal.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueSubscriptionConfirmed = "subscription.confirmed"
	QueueNewsletterPublished   = "newsletter.published"
)

// SubscriptionConfirmedEvent se publica cuando una fila pasa a confirmed.
type SubscriptionConfirmedEvent struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	ConfirmedAt  string    `json:"confirmed_at"`
}

// NewsletterPublishedEvent resume el envio de una edicion.
type NewsletterPublishedEvent struct {
	Title       string `json:"title"`
	Delivered   int    `json:"delivered"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	PublishedAt string `json:"published_at"`
}

// Publisher abstrae el broker.
type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

type nopPublisher struct{}

// NewNopPublisher se usa cuando AMQP_URL no esta configurada.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, any) error {
	return nil
}

// AMQPPublisher abre una conexion por publicacion; el volumen de eventos es bajo.
type AMQPPublisher struct {
	url  string
	dial func(url string) (amqpConnection, error)
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connAdapter struct {
	conn *amqp.Connection
}

func (c connAdapter) Channel() (amqpChannel, error) {
	return c.conn.Channel()
}

func (c connAdapter) Close() error {
	return c.conn.Close()
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{
		url: url,
		dial: func(url string) (amqpConnection, error) {
			conn, err := amqp.Dial(url)
			if err != nil {
				return nil, err
			}
			return connAdapter{conn: conn}, nil
		},
	}
}

// Publish declara la cola (durable, idempotente) y publica el evento como JSON persistente.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event any) error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    uuid.NewString(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
