package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrQueueUnavailable means no broker connection is configured: nothing was
// scheduled, as opposed to a job that was scheduled and later failed.
var ErrQueueUnavailable = errors.New("queue unavailable: no broker connection")

type Publisher interface {
	Publish(ctx context.Context, stage Stage, message any) error
}

type publisher struct {
	conn *amqp.Connection
}

// NewPublisher wraps a broker connection for stage enqueues. conn may be nil;
// every Publish then returns ErrQueueUnavailable.
func NewPublisher(conn *amqp.Connection) Publisher {
	return &publisher{conn: conn}
}

func (p *publisher) Publish(ctx context.Context, stage Stage, message any) error {
	if p.conn == nil {
		return ErrQueueUnavailable
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(stage.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		stage.Exchange,
		stage.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
