package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	serviceErrors "github.com/nastyazhadan/order-gateway/shared/errors/service"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

const notAuthenticatedText = "session not authenticated"

type OrderProcessor interface {
	ProcessNewOrder(ctx context.Context, request models.NewOrderRequest, session models.Session) models.Response
	ProcessCancel(ctx context.Context, request models.CancelOrderRequest, session models.Session) models.Response
	ProcessMassCancel(ctx context.Context, request models.MassCancelRequest, session models.Session) models.Response
}

// Handler routes session requests to the order processor. It is the single
// place where session authentication is enforced.
type Handler struct {
	processor OrderProcessor
}

func NewHandler(processor OrderProcessor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) Handle(ctx context.Context, session models.Session, request models.Request) models.Response {
	ctx = zapLogger.ContextWithSession(ctx, session.Username, session.SessionSubID)

	if err := checkRequest(session, request); err != nil {
		return h.reject(ctx, request, err)
	}

	switch req := request.(type) {
	case models.NewOrderRequest:
		return h.processor.ProcessNewOrder(ctx, req, session)
	case models.CancelOrderRequest:
		return h.processor.ProcessCancel(ctx, req, session)
	case models.MassCancelRequest:
		return h.processor.ProcessMassCancel(ctx, req, session)
	default:
		return h.reject(ctx, request, fmt.Errorf("%w: %T", serviceErrors.ErrUnknownRequest, request))
	}
}

func checkRequest(session models.Session, request models.Request) error {
	switch request.(type) {
	case models.NewOrderRequest, models.CancelOrderRequest, models.MassCancelRequest:
	default:
		return fmt.Errorf("%w: %T", serviceErrors.ErrUnknownRequest, request)
	}

	if !session.Authenticated {
		return serviceErrors.ErrSessionNotAuthorized
	}

	return nil
}

// reject answers request with the rejection of its own response type.
func (h *Handler) reject(ctx context.Context, request models.Request, err error) models.Response {
	reason := models.RejectReasonInvalidField
	text := fmt.Sprintf("unsupported request %T", request)
	if errors.Is(err, serviceErrors.ErrSessionNotAuthorized) {
		reason = models.RejectReasonSessionNotAuthenticated
		text = notAuthenticatedText
	}

	zapLogger.Warn(ctx, "request refused at the gateway",
		zap.String("reason", string(reason)),
		zap.Error(err),
	)

	switch req := request.(type) {
	case models.NewOrderRequest:
		return models.OrderReject(req.ClOrdID, reason, text)
	case models.CancelOrderRequest:
		return models.CancelReject(req.ClOrdID, reason, text)
	case models.MassCancelRequest:
		return models.MassCancelReject(reason, text)
	default:
		return models.OrderReject("", reason, text)
	}
}
