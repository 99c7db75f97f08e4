package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/aws"
	"github.com/imrishuroy/easyorder/internal/logging"
)

type fakeSender struct {
	configured bool
	err        error
	calls      int
	body       string
	attrs      map[string]string
	deadline   bool
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(ctx context.Context, body string, attrs map[string]string) (string, error) {
	f.calls++
	f.body = body
	f.attrs = attrs
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return "m-1", nil
}

type outcomes struct {
	mu  sync.Mutex
	got []Outcome
}

func (o *outcomes) Record(_ context.Context, outcome Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, outcome)
}

func TestOrderCreated_JSON(t *testing.T) {
	b, err := json.Marshal(OrderCreated{OrderID: 7, CustomerID: 3, TotalValue: decimal.RequireFromString("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":7,"customer_id":3,"total_value":"12.50"}`, string(b))

	msg, err := Decode(string(b))
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.OrderID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(msg.TotalValue))

	_, err = Decode(`{"customer_id":1}`)
	assert.Error(t, err)
	_, err = Decode(`not json`)
	assert.Error(t, err)
}

func TestDispatch_SkippedWithoutQueue(t *testing.T) {
	var logs bytes.Buffer
	sender := &fakeSender{configured: false}
	rec := &outcomes{}
	d := NewDispatcher(sender, time.Second, rec, zerolog.New(&logs))

	outcome, err := d.Dispatch(context.Background(), OrderCreated{OrderID: 1, CustomerID: 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Zero(t, sender.calls)
	assert.Equal(t, []Outcome{OutcomeSkipped}, rec.got)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "no queue configured")
}

func TestDispatch_NilSenderIsSkipped(t *testing.T) {
	d := NewDispatcher(nil, time.Second, nil, zerolog.Nop())
	outcome, err := d.Dispatch(context.Background(), OrderCreated{OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestDispatch_Delivered(t *testing.T) {
	var logs bytes.Buffer
	sender := &fakeSender{configured: true}
	rec := &outcomes{}
	d := NewDispatcher(sender, time.Second, rec, zerolog.New(&logs))

	ctx := logging.WithRequestID(context.Background(), "req-9")
	outcome, err := d.Dispatch(ctx, OrderCreated{OrderID: 5, CustomerID: 2, TotalValue: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)
	assert.Equal(t, 1, sender.calls)
	assert.True(t, sender.deadline)
	assert.JSONEq(t, `{"order_id":5,"customer_id":2,"total_value":"10.00"}`, sender.body)
	assert.Equal(t, map[string]string{"event_type": EventOrderCreated, "order_id": "5", "correlation_id": "req-9"}, sender.attrs)
	assert.Equal(t, []Outcome{OutcomeDelivered}, rec.got)
	assert.Contains(t, logs.String(), "order notification sent")
}

func TestDispatch_FailureIsReportedOnce(t *testing.T) {
	var logs bytes.Buffer
	sender := &fakeSender{configured: true, err: errors.New("dial tcp: connection refused")}
	rec := &outcomes{}
	d := NewDispatcher(sender, time.Second, rec, zerolog.New(&logs))

	outcome, err := d.Dispatch(context.Background(), OrderCreated{OrderID: 5, CustomerID: 2})
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, apperr.ErrDispatchFailure)
	assert.Equal(t, 1, sender.calls, "no retry")
	assert.Equal(t, []Outcome{OutcomeFailed}, rec.got)
	assert.Contains(t, logs.String(), `"level":"error"`)
}

func TestDispatch_SurvivesCallerCancellation(t *testing.T) {
	sender := &fakeSender{configured: true}
	d := NewDispatcher(sender, time.Second, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := d.Dispatch(ctx, OrderCreated{OrderID: 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)
}

func TestOTelRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r, err := NewOTelRecorder(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	r.Record(ctx, OutcomeDelivered)
	r.Record(ctx, OutcomeDelivered)
	r.Record(ctx, OutcomeFailed)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "notify.dispatch.outcomes", m.Name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	total := int64(0)
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, sum.DataPoints, 2)
}

type fakePutter struct {
	err  error
	dims []map[string]string
}

func (f *fakePutter) PutCount(_ context.Context, name string, dims map[string]string, _ float64) error {
	f.dims = append(f.dims, dims)
	return f.err
}

func TestCloudWatchRecorder(t *testing.T) {
	p := &fakePutter{}
	NewCloudWatchRecorder(p, time.Second, zerolog.Nop()).Record(context.Background(), OutcomeSkipped)
	require.Len(t, p.dims, 1)
	assert.Equal(t, "skipped", p.dims[0]["Outcome"])

	var logs bytes.Buffer
	p = &fakePutter{err: errors.New("access denied")}
	Recorders{NopRecorder{}, NewCloudWatchRecorder(p, time.Second, zerolog.New(&logs))}.Record(context.Background(), OutcomeFailed)
	assert.Contains(t, logs.String(), "failed to publish dispatch metric")
}

// stalledCloudWatch holds PutMetricData until the context ends or release fires.
type stalledCloudWatch struct {
	release     chan struct{}
	hadDeadline bool
}

func (s *stalledCloudWatch) PutMetricData(ctx context.Context, _ *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	_, s.hadDeadline = ctx.Deadline()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
		return &cloudwatch.PutMetricDataOutput{}, nil
	}
}

func TestDispatch_SlowMetricsDoNotStallCaller(t *testing.T) {
	cw := &stalledCloudWatch{release: make(chan struct{})}
	defer close(cw.release)

	var logs bytes.Buffer
	recorder := NewCloudWatchRecorder(aws.NewMetricsPublisher(cw, "EasyOrder"), 50*time.Millisecond, zerolog.New(&logs))
	d := NewDispatcher(&fakeSender{configured: true}, 100*time.Millisecond, recorder, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcome, err := d.Dispatch(ctx, OrderCreated{OrderID: 1, CustomerID: 1})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)
	assert.True(t, cw.hadDeadline)
	assert.Less(t, elapsed, time.Second)
	assert.Contains(t, logs.String(), "failed to publish dispatch metric")
}

func TestNewCloudWatchRecorder_DefaultTimeout(t *testing.T) {
	r := NewCloudWatchRecorder(&fakePutter{}, 0, zerolog.Nop())
	assert.Equal(t, DefaultMetricTimeout, r.timeout)
}

type queueMock struct {
	messages []sqstypes.Message
	deleted  []string
	input    *sqs.ReceiveMessageInput
}

func (q *queueMock) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	return &sqs.SendMessageOutput{}, nil
}

func (q *queueMock) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.input = in
	msgs := q.messages
	q.messages = nil
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (q *queueMock) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.deleted = append(q.deleted, sdkaws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestConsumer_PollOnce(t *testing.T) {
	q := &queueMock{messages: []sqstypes.Message{
		{MessageId: sdkaws.String("1"), ReceiptHandle: sdkaws.String("r1"), Body: sdkaws.String(`{"order_id":1,"customer_id":1,"total_value":"5.00"}`)},
		{MessageId: sdkaws.String("2"), ReceiptHandle: sdkaws.String("r2"), Body: sdkaws.String(`garbage`)},
		{MessageId: sdkaws.String("3"), ReceiptHandle: sdkaws.String("r3"), Body: sdkaws.String(`{"order_id":3,"customer_id":1,"total_value":"1.00"}`)},
	}}
	var seen []int64
	handler := func(_ context.Context, msg OrderCreated) error {
		seen = append(seen, msg.OrderID)
		if msg.OrderID == 3 {
			return errors.New("order 3 not found")
		}
		return nil
	}
	c := NewConsumer(q, "https://sqs.local/orders", 5*time.Second, 0, handler, zerolog.Nop())

	handled, err := c.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, handled)
	assert.Equal(t, []int64{1, 3}, seen)
	assert.Equal(t, []string{"r1"}, q.deleted)
	assert.Equal(t, int32(5), q.input.WaitTimeSeconds)
	assert.Equal(t, int32(10), q.input.MaxNumberOfMessages)
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	q := &queueMock{}
	c := NewConsumer(q, "https://sqs.local/orders", 0, 1, func(context.Context, OrderCreated) error { return nil }, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, c.Run(ctx))
}
