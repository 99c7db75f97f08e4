package notify

import (
	"context"
	"errors"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/easyorder/internal/aws"
)

// Handler processes one decoded notification. Returning an error leaves the
// message on the queue for redelivery.
type Handler func(ctx context.Context, msg OrderCreated) error

// Consumer drains the order queue with long polling.
type Consumer struct {
	sqs         aws.SQSAPI
	queueURL    string
	waitTime    time.Duration
	maxMessages int32
	handler     Handler
	logger      zerolog.Logger
}

func NewConsumer(client aws.SQSAPI, queueURL string, waitTime time.Duration, maxMessages int32, handler Handler, logger zerolog.Logger) *Consumer {
	if maxMessages <= 0 || maxMessages > 10 {
		maxMessages = 10
	}
	return &Consumer{
		sqs:         client,
		queueURL:    queueURL,
		waitTime:    waitTime,
		maxMessages: maxMessages,
		handler:     handler,
		logger:      logger.With().Str("component", "consumer").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Str("queue_url", c.queueURL).Dur("wait_time", c.waitTime).Msg("consumer started")
	for {
		if _, err := c.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("receive failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			c.logger.Info().Msg("consumer stopped")
			return nil
		}
	}
}

// PollOnce receives one batch and returns how many messages were handled successfully.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	out, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              sdkaws.String(c.queueURL),
		MaxNumberOfMessages:   c.maxMessages,
		WaitTimeSeconds:       int32(c.waitTime / time.Second),
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, m := range out.Messages {
		log := c.logger.With().Str("message_id", sdkaws.ToString(m.MessageId)).Logger()
		if err := c.Process(ctx, sdkaws.ToString(m.Body)); err != nil {
			log.Error().Err(err).Msg("message left for redelivery")
			continue
		}
		_, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      sdkaws.String(c.queueURL),
			ReceiptHandle: m.ReceiptHandle,
		})
		if err != nil {
			log.Error().Err(err).Msg("delete message failed")
			continue
		}
		handled++
	}
	return handled, nil
}

// Process decodes one body and hands it to the handler.
func (c *Consumer) Process(ctx context.Context, body string) error {
	msg, err := Decode(body)
	if err != nil {
		return err
	}
	if c.handler == nil {
		return errors.New("no handler configured")
	}
	return c.handler(ctx, msg)
}
