package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/shared/config"
	serviceErrors "github.com/nastyazhadan/order-gateway/shared/errors/service"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

var testBreaker = config.CircuitBreakerConfig{
	MaxRequests: 1,
	Interval:    time.Minute,
	Timeout:     time.Minute,
	MaxFailures: 2,
}

func tradeReport() models.ExecutionReport {
	price := decimal.RequireFromString("150.00")
	buy := &models.Order{OrderID: 1, ClOrdID: "C1", Symbol: "AAPL", Side: models.SideBuy, Username: "buyer"}
	sell := &models.Order{
		OrderID:  2,
		ClOrdID:  "C2",
		Symbol:   "AAPL",
		Side:     models.SideSell,
		Price:    decimal.NewNullDecimal(price),
		OrderQty: 10,
		CumQty:   10,
		Username: "seller",
		State:    models.OrderStateFilled,
	}

	return models.NewExecutionReport(models.ExecTypeTrade, *sell, []models.Trade{
		models.NewTrade(1, buy, sell, price, 10),
	})
}

func TestExecutionPublisher_PublishExecution(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewExecutionPublisher(producer, "executions", testBreaker)
	t.Cleanup(func() { _ = publisher.Close() })

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(message *sarama.ProducerMessage) error {
		if message.Topic != "executions" {
			return fmt.Errorf("unexpected topic %q", message.Topic)
		}
		key, err := message.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "AAPL" {
			return fmt.Errorf("unexpected key %q", key)
		}

		value, err := message.Value.Encode()
		if err != nil {
			return err
		}
		var decoded ExecutionReportMessage
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.ExecType != "TRADE" || len(decoded.Trades) != 1 || decoded.Trades[0].Quantity != 10 {
			return fmt.Errorf("unexpected payload %s", value)
		}
		return nil
	})

	ctx := zapLogger.ContextWithTraceID(context.Background(), "req-7")
	require.NoError(t, publisher.PublishExecution(ctx, tradeReport()))
}

func TestExecutionPublisher_CircuitOpens(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewExecutionPublisher(producer, "executions", testBreaker)
	t.Cleanup(func() { _ = publisher.Close() })

	brokerDown := errors.New("broker down")
	producer.ExpectSendMessageAndFail(brokerDown)
	producer.ExpectSendMessageAndFail(brokerDown)

	for i := 0; i < 2; i++ {
		err := publisher.PublishExecution(context.Background(), tradeReport())
		assert.ErrorIs(t, err, brokerDown)
	}

	err := publisher.PublishExecution(context.Background(), tradeReport())
	assert.ErrorIs(t, err, serviceErrors.ErrPublisherUnavailable)
}
