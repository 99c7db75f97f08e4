package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder observes dispatch outcomes. Implementations must not block the caller
// on failure.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome)
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Outcome) {}

// Recorders fans an outcome out to several recorders.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, outcome Outcome) {
	for _, r := range rs {
		r.Record(ctx, outcome)
	}
}

// OTelRecorder counts outcomes on notify.dispatch.outcomes.
type OTelRecorder struct {
	counter metric.Int64Counter
}

func NewOTelRecorder(meter metric.Meter) (*OTelRecorder, error) {
	counter, err := meter.Int64Counter("notify.dispatch.outcomes",
		metric.WithDescription("Order notification dispatch attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}
	return &OTelRecorder{counter: counter}, nil
}

func (r *OTelRecorder) Record(ctx context.Context, outcome Outcome) {
	r.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

// MetricPutter is satisfied by *aws.MetricsPublisher.
type MetricPutter interface {
	PutCount(ctx context.Context, name string, dimensions map[string]string, value float64) error
}

// DefaultMetricTimeout bounds one PutMetricData call when no timeout is configured.
const DefaultMetricTimeout = 2 * time.Second

// CloudWatchRecorder publishes NotificationDispatch{Outcome} to CloudWatch.
// Publishing errors are logged only.
type CloudWatchRecorder struct {
	metrics MetricPutter
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCloudWatchRecorder returns a recorder whose publish calls give up after
// timeout (DefaultMetricTimeout when <= 0).
func NewCloudWatchRecorder(metrics MetricPutter, timeout time.Duration, logger zerolog.Logger) *CloudWatchRecorder {
	if timeout <= 0 {
		timeout = DefaultMetricTimeout
	}
	return &CloudWatchRecorder{metrics: metrics, timeout: timeout, logger: logger}
}

// Record runs on the request path, so the publish is detached from the
// caller's cancellation but never outlives r.timeout.
func (r *CloudWatchRecorder) Record(ctx context.Context, outcome Outcome) {
	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	err := r.metrics.PutCount(putCtx, "NotificationDispatch", map[string]string{"Outcome": string(outcome)}, 1)
	if err != nil {
		r.logger.Warn().Err(err).Str("outcome", string(outcome)).Msg("failed to publish dispatch metric")
	}
}
