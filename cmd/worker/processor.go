package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/easyorder/internal/notify"
	"github.com/imrishuroy/easyorder/internal/orders"
)

// OrderGetter is satisfied by *orders.Store.
type OrderGetter interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
}

// Processor handles order-created notifications.
type Processor struct {
	orders OrderGetter
	logger zerolog.Logger
}

func NewProcessor(orders OrderGetter, logger zerolog.Logger) *Processor {
	return &Processor{orders: orders, logger: logger.With().Str("component", "worker").Logger()}
}

// Handle processes an SQS batch. The first failing message fails the batch
// so Lambda redelivers it.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.logger.Debug().Int("records", len(ev.Records)).Msg("received sqs batch")
	for _, rec := range ev.Records {
		msg, err := notify.Decode(rec.Body)
		if err != nil {
			p.logger.Error().Err(err).Str("message_id", rec.MessageId).Msg("malformed message")
			return err
		}
		if err := p.Process(ctx, msg); err != nil {
			p.logger.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			return err
		}
	}
	return nil
}

// Process looks up the order named by msg and logs it. An order deleted since
// the notification was sent is logged and dropped.
func (p *Processor) Process(ctx context.Context, msg notify.OrderCreated) error {
	log := p.logger.With().Int64("order_id", msg.OrderID).Int64("customer_id", msg.CustomerID).Logger()

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order %d: %w", msg.OrderID, err)
	}
	if order == nil {
		log.Warn().Msg("order no longer exists, dropping notification")
		return nil
	}

	log.Info().
		Str("description", order.Description).
		Str("total_value", msg.TotalValue.StringFixed(2)).
		Msg("order notification processed")
	return nil
}
