package gateway

import (
	"context"
	"testing"

	fakeValue "github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/internal/services/mocks"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

func init() {
	zapLogger.SetNopLogger()
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	clOrdID := fakeValue.LetterN(10)
	authenticated := models.Session{
		Username:      fakeValue.Username(),
		SessionSubID:  "S1",
		Authenticated: true,
	}
	anonymous := models.Session{Username: fakeValue.Username(), SessionSubID: "S1"}

	tests := []struct {
		name           string
		session        models.Session
		request        models.Request
		setupMocks     func(*mocks.MockOrderProcessor)
		expectedType   models.ResponseType
		expectedReason models.RejectReason
	}{
		{
			name:    "new order is routed",
			session: authenticated,
			request: models.NewOrderRequest{ClOrdID: clOrdID},
			setupMocks: func(processor *mocks.MockOrderProcessor) {
				processor.On("ProcessNewOrder", mock.Anything, models.NewOrderRequest{ClOrdID: clOrdID}, authenticated).
					Return(models.Response{Type: models.ResponseOrderAck, ClOrdID: clOrdID}).Once()
			},
			expectedType: models.ResponseOrderAck,
		},
		{
			name:    "cancel is routed",
			session: authenticated,
			request: models.CancelOrderRequest{ClOrdID: clOrdID},
			setupMocks: func(processor *mocks.MockOrderProcessor) {
				processor.On("ProcessCancel", mock.Anything, models.CancelOrderRequest{ClOrdID: clOrdID}, authenticated).
					Return(models.Response{Type: models.ResponseCancelAck, ClOrdID: clOrdID}).Once()
			},
			expectedType: models.ResponseCancelAck,
		},
		{
			name:    "mass cancel is routed",
			session: authenticated,
			request: models.MassCancelRequest{Symbol: "AAPL"},
			setupMocks: func(processor *mocks.MockOrderProcessor) {
				processor.On("ProcessMassCancel", mock.Anything, models.MassCancelRequest{Symbol: "AAPL"}, authenticated).
					Return(models.MassCancelAck(nil)).Once()
			},
			expectedType: models.ResponseMassCancelAck,
		},
		{
			name:           "new order from unauthenticated session",
			session:        anonymous,
			request:        models.NewOrderRequest{ClOrdID: clOrdID},
			setupMocks:     func(processor *mocks.MockOrderProcessor) {},
			expectedType:   models.ResponseOrderReject,
			expectedReason: models.RejectReasonSessionNotAuthenticated,
		},
		{
			name:           "cancel from unauthenticated session",
			session:        anonymous,
			request:        models.CancelOrderRequest{ClOrdID: clOrdID},
			setupMocks:     func(processor *mocks.MockOrderProcessor) {},
			expectedType:   models.ResponseCancelReject,
			expectedReason: models.RejectReasonSessionNotAuthenticated,
		},
		{
			name:           "mass cancel from unauthenticated session",
			session:        anonymous,
			request:        models.MassCancelRequest{},
			setupMocks:     func(processor *mocks.MockOrderProcessor) {},
			expectedType:   models.ResponseMassCancelReject,
			expectedReason: models.RejectReasonSessionNotAuthenticated,
		},
		{
			name:           "nil request",
			session:        authenticated,
			request:        nil,
			setupMocks:     func(processor *mocks.MockOrderProcessor) {},
			expectedType:   models.ResponseOrderReject,
			expectedReason: models.RejectReasonInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := mocks.NewMockOrderProcessor(t)
			tt.setupMocks(processor)

			handler := NewHandler(processor)
			response := handler.Handle(ctx, tt.session, tt.request)

			assert.Equal(t, tt.expectedType, response.Type)
			assert.Equal(t, tt.expectedReason, response.Reason)
			if tt.expectedReason == models.RejectReasonSessionNotAuthenticated {
				assert.Equal(t, notAuthenticatedText, response.Text)
			}
			if tt.request == nil {
				assert.Equal(t, "unsupported request <nil>", response.Text)
			}
		})
	}
}
