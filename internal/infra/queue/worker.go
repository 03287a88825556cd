package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent marks a notice that will never succeed. The worker dead-letters it
// instead of requeueing.
var ErrPermanent = errors.New("permanent notice failure")

// NoticeHandler reaches the customer for one notice.
type NoticeHandler interface {
	HandleCustomerNotice(ctx context.Context, notice CustomerNotice) error
}

// Consumer is the slice of amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Handler NoticeHandler
	log     *slog.Logger
}

func NewWorker(ch Consumer, handler NoticeHandler, log *slog.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Handler: handler,
		log:     log,
	}
}

// Start consumes until ctx is done or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.log.Info("notice worker waiting", slog.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var notice CustomerNotice
	if err := json.Unmarshal(d.Body, &notice); err != nil {
		w.log.Error("malformed customer notice", slog.Any("error", err))
		// malformed payloads never parse, so they go straight to the DLQ
		_ = d.Nack(false, false)
		return
	}

	log := w.log.With(slog.String("event", notice.Event), slog.String("lead_id", notice.LeadID))

	err := w.Handler.HandleCustomerNotice(ctx, notice)
	switch {
	case err == nil:
		log.Info("customer notice sent")
		_ = d.Ack(false)
	case errors.Is(err, ErrPermanent) || d.Redelivered:
		log.Error("customer notice dead-lettered", slog.Any("error", err))
		_ = d.Nack(false, false)
	default:
		log.Warn("customer notice failed, requeueing", slog.Any("error", err))
		_ = d.Nack(false, true)
	}
}
