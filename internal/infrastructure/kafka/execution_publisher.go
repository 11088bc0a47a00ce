package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/shared/config"
	serviceErrors "github.com/nastyazhadan/order-gateway/shared/errors/service"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
	"github.com/nastyazhadan/order-gateway/shared/interceptors/xrequestid"
)

const execTypeHeader = "exec-type"

// ExecutionPublisher writes execution reports keyed by symbol, so reports of
// one instrument keep their order on a partition.
type ExecutionPublisher struct {
	producer       sarama.SyncProducer
	topic          string
	circuitBreaker *gobreaker.CircuitBreaker[struct{}]
}

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer: %w", err)
	}

	return producer, nil
}

func NewExecutionPublisher(
	producer sarama.SyncProducer,
	topic string,
	cfg config.CircuitBreakerConfig,
) *ExecutionPublisher {
	circuitBreaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "executionPublisher",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})

	return &ExecutionPublisher{
		producer:       producer,
		topic:          topic,
		circuitBreaker: circuitBreaker,
	}
}

func (p *ExecutionPublisher) PublishExecution(ctx context.Context, report models.ExecutionReport) error {
	const op = "ExecutionPublisher.PublishExecution"

	payload, err := json.Marshal(ExecutionReportFromDomain(report))
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(report.Order.Symbol),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(execTypeHeader), Value: []byte(report.ExecType)},
			{Key: []byte(xrequestid.HeaderKey), Value: []byte(zapLogger.TraceIDFromContext(ctx))},
		},
	}

	_, err = p.circuitBreaker.Execute(func() (struct{}, error) {
		_, _, sendErr := p.producer.SendMessage(message)
		return struct{}{}, sendErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w: %w", op, serviceErrors.ErrPublisherUnavailable, err)
		}
		return fmt.Errorf("%s: send: %w", op, err)
	}

	return nil
}

func (p *ExecutionPublisher) Close() error {
	return p.producer.Close()
}
