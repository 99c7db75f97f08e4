package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/logging"
)

// Outcome of one dispatch attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Sender publishes a message body with string attributes. *aws.Publisher implements it.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, body string, attributes map[string]string) (string, error)
}

// Dispatcher makes exactly one send attempt per call.
type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	recorder Recorder
	logger   zerolog.Logger
}

// NewDispatcher returns a Dispatcher. A nil or unconfigured sender makes every
// dispatch a skip; recorder may be nil.
func NewDispatcher(sender Sender, timeout time.Duration, recorder Recorder, logger zerolog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Dispatcher{
		sender:   sender,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// Dispatch sends msg once. A failed send is returned as an error wrapping
// apperr.ErrDispatchFailure; callers log it and carry on.
func (d *Dispatcher) Dispatch(ctx context.Context, msg OrderCreated) (Outcome, error) {
	log := logging.FromContext(ctx, d.logger)
	log = log.With().Int64("order_id", msg.OrderID).Int64("customer_id", msg.CustomerID).Logger()

	if d.sender == nil || !d.sender.Configured() {
		log.Warn().Str("outcome", string(OutcomeSkipped)).Msg("order notification skipped: no queue configured")
		d.recorder.Record(ctx, OutcomeSkipped)
		return OutcomeSkipped, nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return d.fail(ctx, log, fmt.Errorf("%w: encode payload: %w", apperr.ErrDispatchFailure, err))
	}

	sendCtx := context.WithoutCancel(ctx)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, d.timeout)
		defer cancel()
	}

	messageID, err := d.sender.Send(sendCtx, string(body), map[string]string{
		"event_type":     EventOrderCreated,
		"order_id":       strconv.FormatInt(msg.OrderID, 10),
		"correlation_id": logging.RequestID(ctx),
	})
	if err != nil {
		return d.fail(ctx, log, fmt.Errorf("%w: order %d: %w", apperr.ErrDispatchFailure, msg.OrderID, err))
	}

	log.Info().Str("outcome", string(OutcomeDelivered)).Str("message_id", messageID).Msg("order notification sent")
	d.recorder.Record(ctx, OutcomeDelivered)
	return OutcomeDelivered, nil
}

func (d *Dispatcher) fail(ctx context.Context, log zerolog.Logger, err error) (Outcome, error) {
	ev := log.Error().Err(err).Str("outcome", string(OutcomeFailed))
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ev = ev.Str("aws_error_code", apiErr.ErrorCode())
	}
	ev.Msg("order notification failed")
	d.recorder.Record(ctx, OutcomeFailed)
	return OutcomeFailed, err
}
