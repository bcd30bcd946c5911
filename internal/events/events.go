// Package events publishes order lifecycle events to RabbitMQ after the
// corresponding database transaction has committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderCreated   = "order.created"
	ReturnCreated  = "return.created"
	ReturnRefunded = "return.refunded"
)

type Event struct {
	Type     string    `json:"type"`
	OrderID  int64     `json:"orderId"`
	ReturnID int64     `json:"returnId,omitempty"`
	UserID   int64     `json:"userId"`
	Amount   string    `json:"amount,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// AMQPPublisher sends events as persistent JSON messages to a topic exchange,
// routed by event type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// Dial connects to the broker, retrying a few times with a growing pause, and
// declares the exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		log.Printf("[events] rabbitmq not reachable, retrying in %v: %v", wait, err)
		time.Sleep(wait)
	}
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if e.Occurred.IsZero() {
		e.Occurred = time.Now().UTC()
	}
	body, err := Encode(e)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		e.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.Occurred,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}
