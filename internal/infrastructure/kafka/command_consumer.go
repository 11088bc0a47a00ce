package kafka

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/shared/config"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
	"github.com/nastyazhadan/order-gateway/shared/interceptors/xrequestid"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, messages ...kafkago.Message) error
	Close() error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, messages ...kafkago.Message) error
	Close() error
}

type RequestHandler interface {
	Handle(ctx context.Context, session models.Session, request models.Request) models.Response
}

// CommandConsumer feeds session commands from a topic into the request
// handler and writes every response to the response topic under the same key.
type CommandConsumer struct {
	reader  MessageReader
	writer  MessageWriter
	handler RequestHandler
}

func NewReader(cfg config.KafkaConfig) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.CommandTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.ResponseTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
}

func NewCommandConsumer(reader MessageReader, writer MessageWriter, handler RequestHandler) *CommandConsumer {
	return &CommandConsumer{
		reader:  reader,
		writer:  writer,
		handler: handler,
	}
}

// Run consumes until ctx is cancelled or the reader fails. Offsets are
// committed after the response is written, or after a failed write has been
// logged. A failed commit is logged and consumption goes on: the next commit
// covers the offset, and a redelivered command is answered as a duplicate.
func (c *CommandConsumer) Run(ctx context.Context) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "fetch command")
		}

		c.process(ctx, message)

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			zapLogger.Warn(ctx, "command offset not committed",
				zap.Int("partition", message.Partition),
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *CommandConsumer) Close() error {
	return errors.Join(c.reader.Close(), c.writer.Close())
}

func (c *CommandConsumer) process(ctx context.Context, message kafkago.Message) {
	ctx, requestID := xrequestid.Ensure(ctx, headerValue(message.Headers, xrequestid.HeaderKey))

	response, err := c.dispatch(ctx, message.Value)
	if err != nil {
		zapLogger.Warn(ctx, "malformed command",
			zap.Int64("offset", message.Offset),
			zap.Error(err),
		)
		response = models.OrderReject("", models.RejectReasonInvalidField, err.Error())
	}

	if err := c.reply(ctx, message.Key, requestID, response); err != nil {
		zapLogger.Error(ctx, "response not delivered",
			zap.String("response", string(response.Type)),
			zap.String("clordid", response.ClOrdID),
			zap.Error(err),
		)
	}
}

func (c *CommandConsumer) dispatch(ctx context.Context, payload []byte) (models.Response, error) {
	var command CommandMessage
	if err := json.Unmarshal(payload, &command); err != nil {
		return models.Response{}, errors.Wrap(err, "decode command")
	}

	session, request, err := command.ToDomain()
	if err != nil {
		return models.Response{}, errors.Wrap(err, "convert command")
	}

	return c.handler.Handle(ctx, session, request), nil
}

func (c *CommandConsumer) reply(ctx context.Context, key []byte, requestID string, response models.Response) error {
	payload, err := json.Marshal(ResponseFromDomain(response))
	if err != nil {
		return errors.Wrap(err, "encode response")
	}

	err = c.writer.WriteMessages(ctx, kafkago.Message{
		Key:   key,
		Value: payload,
		Headers: []kafkago.Header{
			{Key: xrequestid.HeaderKey, Value: []byte(requestID)},
		},
	})
	if err != nil {
		return errors.Wrap(err, "write response")
	}

	return nil
}

func headerValue(headers []kafkago.Header, key string) string {
	for _, header := range headers {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}
