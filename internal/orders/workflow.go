package orders

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/logging"
	"github.com/imrishuroy/easyorder/internal/notify"
)

const tracerName = "github.com/imrishuroy/easyorder/internal/orders"

// Dispatcher sends the order-created notification. *notify.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg notify.OrderCreated) (notify.Outcome, error)
}

// Workflow creates orders: durable write first, then one notification
// attempt whose failure never fails the request.
type Workflow struct {
	orders     *Store
	dispatcher Dispatcher
	tracer     trace.Tracer
	logger     zerolog.Logger
}

func NewWorkflow(orders *Store, dispatcher Dispatcher, logger zerolog.Logger) *Workflow {
	return &Workflow{
		orders:     orders,
		dispatcher: dispatcher,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With().Str("component", "order_workflow").Logger(),
	}
}

// Create persists the order and notifies the queue. The returned order is the
// persisted one regardless of the notification outcome.
func (w *Workflow) Create(ctx context.Context, in CreateInput) (*Order, error) {
	ctx, span := w.tracer.Start(ctx, "orders.create",
		trace.WithAttributes(attribute.Int64("customer.id", in.CustomerID)))
	defer span.End()

	if err := validateCreate(in); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order, err := w.orders.Create(ctx, Order{Description: in.Description, CustomerID: in.CustomerID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	log := logging.FromContext(ctx, w.logger)
	log.Info().Int64("order_id", order.ID).Int64("customer_id", order.CustomerID).Msg("order created")

	if w.dispatcher != nil {
		outcome, derr := w.dispatcher.Dispatch(ctx, notify.OrderCreated{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			TotalValue: in.TotalValue,
		})
		span.SetAttributes(attribute.String("notify.outcome", string(outcome)))
		if derr != nil {
			// logged by the dispatcher; the order stands
			span.RecordError(derr)
		}
	}
	return order, nil
}

func validateCreate(in CreateInput) error {
	if in.CustomerID <= 0 {
		return apperr.Validation("customer_id must be a positive integer")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperr.Validation("description is required")
	}
	if in.TotalValue.IsNegative() {
		return apperr.Validation("total_value must be >= 0")
	}
	return nil
}
