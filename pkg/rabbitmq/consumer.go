package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Options tune retry and throughput per consumer, fixed per deployment.
type Options struct {
	Workers        int
	MaxAttempts    uint
	InitialBackoff time.Duration
	JobsPerMinute  int
}

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type consumer[T any] struct {
	conn    *amqp.Connection
	stage   Stage
	opts    Options
	handler func(ctx context.Context, msg amqp.Delivery, dependencies T) error
}

// NewConsumer builds a worker-pool consumer for one stage. A handler error is
// retried with exponential backoff up to MaxAttempts; exhausted or permanent
// errors nack the message into the stage DLQ. A nil connection yields a
// consumer whose Consume is a no-op, so a broker-less deployment starts
// cleanly with enqueue disabled.
func NewConsumer[T any](
	conn *amqp.Connection,
	stage Stage,
	opts Options,
	handler func(ctx context.Context, msg amqp.Delivery, dependencies T) error,
) Consumer[T] {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &consumer[T]{
		conn:    conn,
		stage:   stage,
		opts:    opts,
		handler: handler,
	}
}

func (c *consumer[T]) Consume(ctx context.Context, dependencies T) error {
	if c.conn == nil {
		zerolog.Ctx(ctx).Warn().Str("queue", c.stage.Queue).Msg("no broker connection, consumer not started")
		return nil
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := c.declareTopology(ctx, ch); err != nil {
		return err
	}

	err = ch.Qos(c.opts.Workers, 0, false)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.stage.Queue).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(c.stage.Queue, "", false, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.stage.Queue).Msg("failed to consume queue")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("queue", c.stage.Queue).
		Str("exchange", c.stage.Exchange).
		Str("routing_key", c.stage.RoutingKey).
		Int("workers", c.opts.Workers).
		Int("jobs_per_minute", c.opts.JobsPerMinute).
		Msg("stage consumer started")

	jobs := make(chan amqp.Delivery, c.opts.Workers)
	var wg sync.WaitGroup
	for i := 1; i <= c.opts.Workers; i++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()
			c.work(ctx, workerId, jobs, dependencies)
		}(i)
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

func (c *consumer[T]) work(ctx context.Context, workerId int, jobs <-chan amqp.Delivery, dependencies T) {
	var limiter *time.Ticker
	if c.opts.JobsPerMinute > 0 {
		limiter = time.NewTicker(time.Minute / time.Duration(c.opts.JobsPerMinute))
		defer limiter.Stop()
	}

	for msg := range jobs {
		if limiter != nil {
			select {
			case <-limiter.C:
			case <-ctx.Done():
				return
			}
		}

		operation := func() (struct{}, error) {
			return struct{}{}, c.handler(ctx, msg, dependencies)
		}

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = c.opts.InitialBackoff

		_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.opts.MaxAttempts))
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int("worker_id", workerId).Str("queue", c.stage.Queue).Msg("failed to handle message after all retries")
			if nackErr := msg.Nack(false, false); nackErr != nil {
				zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to nack message to send to DLQ")
			}
		} else {
			if ackErr := msg.Ack(false); ackErr != nil {
				zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
			}
		}
	}
}

func (c *consumer[T]) declareTopology(ctx context.Context, ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(c.stage.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", c.stage.Exchange).Msg("failed to declare exchange")
		return err
	}

	err = ch.ExchangeDeclare(c.stage.DLX, "topic", true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", c.stage.DLX).Msg("failed to declare dlx")
		return err
	}

	dlq, err := ch.QueueDeclare(c.stage.DLQ, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.stage.DLQ).Msg("failed to declare dlq")
		return err
	}

	err = ch.QueueBind(dlq.Name, c.stage.DLQRoutingKey, c.stage.DLX, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Msg("failed to bind dlq")
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    c.stage.DLX,
		"x-dead-letter-routing-key": c.stage.DLQRoutingKey,
	}
	q, err := ch.QueueDeclare(c.stage.Queue, true, false, false, false, args)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.stage.Queue).Msg("failed to declare queue")
		return err
	}

	err = ch.QueueBind(q.Name, c.stage.RoutingKey, c.stage.Exchange, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("queue", c.stage.Queue).Msg("failed to bind queue")
		return err
	}

	return nil
}
