package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/internal/services/validator"
	repositoryErrors "github.com/nastyazhadan/order-gateway/shared/errors/repository"
	serviceErrors "github.com/nastyazhadan/order-gateway/shared/errors/service"
	zapLogger "github.com/nastyazhadan/order-gateway/shared/interceptors/logger/zap"
)

func (m *Manager) ProcessNewOrder(
	ctx context.Context,
	request models.NewOrderRequest,
	session models.Session,
) models.Response {
	const op = "Manager.ProcessNewOrder"

	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("order.clordid", request.ClOrdID),
		attribute.String("order.symbol", request.Symbol),
		attribute.String("order.side", string(request.Side)),
	))
	defer span.End()
	defer m.observe(op, time.Now())

	if err := m.validator.ValidateNewOrder(request); err != nil {
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonInvalidField, err.Error())
	}

	if err := m.checkRepositoryDuplicate(ctx, request.ClOrdID); err != nil {
		if errors.Is(err, serviceErrors.ErrDuplicateClOrdID) {
			return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonDuplicateClOrdID, "duplicate ClOrdID")
		}

		zapLogger.Error(ctx, "duplicate check failed", zap.String("op", op), zap.Error(err))
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonInternal, "duplicate check unavailable")
	}

	order, inserted, err := m.tracked.InsertIfAbsent(request.ClOrdID, func() (*models.Order, error) {
		return m.buildOrder(request, session)
	})
	if err != nil {
		zapLogger.Error(ctx, "order construction failed", zap.String("op", op), zap.Error(err))
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonInternal, "order construction failed")
	}
	if !inserted {
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonDuplicateClOrdID, "duplicate ClOrdID")
	}

	span.SetAttributes(attribute.Int64("order.id", int64(order.OrderID)))

	if err := m.admit(ctx, order); err != nil {
		span.RecordError(err)
		if errors.Is(err, serviceErrors.ErrDuplicateClOrdID) {
			return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonDuplicateClOrdID, "duplicate ClOrdID")
		}

		zapLogger.Error(ctx, "order admission failed", zap.String("op", op), zap.Error(err))
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonInternal, "internal error")
	}

	trades, err := m.match(order)
	if err != nil {
		m.rollback(ctx, order)

		span.RecordError(err)
		zapLogger.Error(ctx, "order admission rolled back",
			zap.String("op", op),
			zap.String("clordid", order.ClOrdID),
			zap.Uint64("order_id", order.OrderID),
			zap.Error(err),
		)
		return m.rejectOrder(ctx, span, request.ClOrdID, models.RejectReasonInternal, "internal error")
	}

	// From here on the trades are binding: storage failures are logged, the
	// request is still acknowledged.
	snapshot := m.matcher.Snapshot(order)
	m.persist(ctx, snapshot)
	m.recordTrades(ctx, trades)
	m.settleCounterparties(ctx, order, trades)
	m.retireIfTerminal(order, snapshot)

	m.accepted.Add(1)
	m.metrics.OrderAccepted(snapshot.Symbol)
	if len(trades) > 0 {
		m.metrics.TradesExecuted(snapshot.Symbol, len(trades), totalQuantity(trades))
	}

	execType := models.ExecTypeNew
	if len(trades) > 0 {
		execType = models.ExecTypeTrade
	}
	m.publish(ctx, models.NewExecutionReport(execType, snapshot, trades))

	zapLogger.Info(ctx, "order accepted",
		zap.String("clordid", snapshot.ClOrdID),
		zap.Uint64("order_id", snapshot.OrderID),
		zap.String("state", string(snapshot.State)),
		zap.Int("trades", len(trades)),
	)

	return models.OrderAck(snapshot, trades)
}

func (m *Manager) ProcessCancelOrder(ctx context.Context, clOrdID, username string) models.Response {
	const op = "Manager.ProcessCancelOrder"

	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("order.clordid", clOrdID),
	))
	defer span.End()
	defer m.observe(op, time.Now())

	snapshot, err := m.cancelOwned(ctx, clOrdID, username)
	switch {
	case err == nil:
	case errors.Is(err, serviceErrors.ErrOrderNotFound):
		return m.rejectCancel(ctx, span, clOrdID, models.RejectReasonOrderNotFound, "order not found")
	case errors.Is(err, serviceErrors.ErrUnauthorized):
		zapLogger.Warn(ctx, "cancel by non-owner",
			zap.String("clordid", clOrdID),
			zap.String("requester", username),
		)
		return m.rejectCancel(ctx, span, clOrdID, models.RejectReasonUnauthorized, "unauthorized")
	case errors.Is(err, serviceErrors.ErrOrderNotCancellable):
		return m.rejectCancel(ctx, span, clOrdID, models.RejectReasonNotCancellable,
			fmt.Sprintf("order not cancellable in state %s", snapshot.State))
	default:
		return m.rejectCancel(ctx, span, clOrdID, models.RejectReasonInternal, "internal error")
	}

	return models.CancelAck(snapshot)
}

// ProcessCancel is the session-level entry point, the requester is the
// session's user.
func (m *Manager) ProcessCancel(
	ctx context.Context,
	request models.CancelOrderRequest,
	session models.Session,
) models.Response {
	return m.ProcessCancelOrder(ctx, request.ClOrdID, session.Username)
}

// ProcessMassCancel cancels every cancellable order submitted by the session,
// restricted to one symbol when the request names it.
func (m *Manager) ProcessMassCancel(
	ctx context.Context,
	request models.MassCancelRequest,
	session models.Session,
) models.Response {
	const op = "Manager.ProcessMassCancel"

	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("session.username", session.Username),
		attribute.String("order.symbol", request.Symbol),
	))
	defer span.End()
	defer m.observe(op, time.Now())

	owned := m.tracked.Select(func(order *models.Order) bool {
		if order.Username != session.Username || order.SessionSubID != session.SessionSubID {
			return false
		}
		return request.Symbol == "" || order.Symbol == request.Symbol
	})

	cancelled := make([]string, 0, len(owned))
	for _, order := range owned {
		if _, err := m.cancelTracked(ctx, order); err != nil {
			continue
		}
		cancelled = append(cancelled, order.ClOrdID)
	}

	span.SetAttributes(attribute.Int("orders.cancelled", len(cancelled)))
	zapLogger.Info(ctx, "mass cancel processed",
		zap.String("symbol", request.Symbol),
		zap.Int("cancelled", len(cancelled)),
	)

	return models.MassCancelAck(cancelled)
}

// Lookup returns a copy of the tracked order for clOrdID.
func (m *Manager) Lookup(clOrdID string) (models.Order, bool) {
	order, found := m.tracked.Get(clOrdID)
	if !found {
		return models.Order{}, false
	}

	return m.matcher.Snapshot(order), true
}

// ActiveOrders lists the live orders of username.
func (m *Manager) ActiveOrders(username string) []models.Order {
	owned := m.tracked.Select(func(order *models.Order) bool {
		return order.Username == username
	})

	active := make([]models.Order, 0, len(owned))
	for _, order := range owned {
		snapshot := m.matcher.Snapshot(order)
		if snapshot.IsLive() {
			active = append(active, snapshot)
		}
	}

	return active
}

func (m *Manager) buildOrder(request models.NewOrderRequest, session models.Session) (*models.Order, error) {
	order := models.NewOrder(models.OrderParams{
		OrderID:      m.orderIDs.Next(),
		ClOrdID:      request.ClOrdID,
		Symbol:       request.Symbol,
		Side:         request.Side,
		Type:         request.Type,
		Price:        request.Price,
		OrderQty:     request.OrderQty,
		Username:     session.Username,
		SessionSubID: session.SessionSubID,
		Account:      request.Account,
		Capacity:     request.Capacity,
		OpenClose:    request.OpenClose,
		MatchingUnit: request.MatchingUnit,
	})

	if err := order.Acknowledge(); err != nil {
		return nil, err
	}

	return order, nil
}

func (m *Manager) checkRepositoryDuplicate(ctx context.Context, clOrdID string) error {
	if !m.options.CheckRepositoryDuplicates {
		return nil
	}

	duplicate, err := validator.IsDuplicateClOrdID(ctx, clOrdID, m.repository)
	if err != nil {
		return err
	}
	if duplicate {
		return serviceErrors.ErrDuplicateClOrdID
	}

	return nil
}

// admit writes the acknowledged order to the repository before it can touch
// the book. On failure the ClOrdID is released and nothing else has changed.
func (m *Manager) admit(ctx context.Context, order *models.Order) error {
	const op = "Manager.admit"

	err := m.repository.SaveOrder(ctx, m.matcher.Snapshot(order))
	if err == nil {
		return nil
	}

	m.tracked.Release(order.ClOrdID, order)

	if errors.Is(err, repositoryErrors.ErrOrderAlreadyExists) {
		return fmt.Errorf("%s: %w: %w", op, serviceErrors.ErrDuplicateClOrdID, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// match runs the order through the matcher, turning a panic into an error.
func (m *Manager) match(order *models.Order) (trades []models.Trade, err error) {
	defer func() {
		if r := recover(); r != nil {
			trades, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	trades, err = m.matcher.ProcessOrder(order)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	return trades, nil
}

// rollback takes an order whose match failed off the book, records the
// cancellation and retires its ClOrdID, which the repository already holds.
func (m *Manager) rollback(ctx context.Context, order *models.Order) {
	defer func() {
		if r := recover(); r != nil {
			zapLogger.Error(ctx, "rollback panicked", zap.Any("panic", r))
		}
		m.tracked.Retire(order.ClOrdID, order, retiredOrder{
			username: order.Username,
			state:    models.OrderStateCancelled,
		})
	}()

	if _, err := m.matcher.CancelOrder(order); err != nil {
		zapLogger.Debug(ctx, "rollback cancel skipped",
			zap.Uint64("order_id", order.OrderID),
			zap.Error(err),
		)
	}

	m.persist(ctx, m.matcher.Snapshot(order))
}

// persist upserts the current state of an order that is already admitted.
func (m *Manager) persist(ctx context.Context, snapshot models.Order) {
	if err := m.repository.SaveOrder(ctx, snapshot); err != nil {
		zapLogger.Error(ctx, "persisting order state failed",
			zap.String("clordid", snapshot.ClOrdID),
			zap.Uint64("order_id", snapshot.OrderID),
			zap.String("state", string(snapshot.State)),
			zap.Error(err),
		)
	}
}

func (m *Manager) recordTrades(ctx context.Context, trades []models.Trade) {
	if m.options.Trades == nil || len(trades) == 0 {
		return
	}

	if err := m.options.Trades.SaveTrades(ctx, trades); err != nil {
		zapLogger.Error(ctx, "persisting trades failed",
			zap.Uint64("first_trade_id", trades[0].TradeID),
			zap.Int("trades", len(trades)),
			zap.Error(err),
		)
	}
}

// settleCounterparties stores the new state of every resting order the
// incoming order traded against and retires the ones it filled.
func (m *Manager) settleCounterparties(ctx context.Context, incoming *models.Order, trades []models.Trade) {
	settled := make(map[uint64]struct{}, len(trades))

	for _, trade := range trades {
		contraID := trade.BuyOrderID
		if incoming.IsBuy() {
			contraID = trade.SellOrderID
		}
		if _, done := settled[contraID]; done {
			continue
		}
		settled[contraID] = struct{}{}

		contra, found := m.tracked.GetByOrderID(contraID)
		if !found {
			continue
		}

		snapshot := m.matcher.Snapshot(contra)
		m.persist(ctx, snapshot)
		m.retireIfTerminal(contra, snapshot)
	}
}

func (m *Manager) retireIfTerminal(order *models.Order, snapshot models.Order) {
	if !snapshot.IsTerminal() {
		return
	}

	m.tracked.Retire(order.ClOrdID, order, retiredOrder{
		username: snapshot.Username,
		state:    snapshot.State,
	})
}

// cancelOwned resolves clOrdID against live and retired orders and cancels
// it on behalf of username. The returned order carries the state a
// not-cancellable rejection reports.
func (m *Manager) cancelOwned(ctx context.Context, clOrdID, username string) (models.Order, error) {
	const op = "Manager.cancelOwned"

	order, found := m.tracked.Get(clOrdID)
	if !found {
		retired, found := m.tracked.Retired(clOrdID)
		switch {
		case !found, retired.cancelled:
			return models.Order{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrOrderNotFound)
		case retired.username != username:
			return models.Order{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrUnauthorized)
		default:
			return models.Order{ClOrdID: clOrdID, Username: username, State: retired.state},
				fmt.Errorf("%s: %w", op, serviceErrors.ErrOrderNotCancellable)
		}
	}

	if order.Username != username {
		return models.Order{}, fmt.Errorf("%s: %w", op, serviceErrors.ErrUnauthorized)
	}

	return m.cancelTracked(ctx, order)
}

func (m *Manager) cancelTracked(ctx context.Context, order *models.Order) (models.Order, error) {
	const op = "Manager.cancelTracked"

	current := m.matcher.Snapshot(order)
	if !current.IsCancellable() {
		return current, serviceErrors.ErrOrderNotCancellable
	}

	removed, err := m.matcher.CancelOrder(order)
	if err != nil {
		// filled or cancelled after the snapshot above
		return m.matcher.Snapshot(order), fmt.Errorf("%s: %w: %w", op, serviceErrors.ErrOrderNotCancellable, err)
	}

	snapshot := m.matcher.Snapshot(order)
	m.persist(ctx, snapshot)

	m.tracked.Retire(order.ClOrdID, order, retiredOrder{
		username:  snapshot.Username,
		state:     snapshot.State,
		cancelled: true,
	})
	m.cancelled.Add(1)
	m.metrics.OrderCancelled(snapshot.Symbol)
	m.publish(ctx, models.NewExecutionReport(models.ExecTypeCancelled, snapshot, nil))

	zapLogger.Info(ctx, "order cancelled",
		zap.String("clordid", snapshot.ClOrdID),
		zap.Uint64("order_id", snapshot.OrderID),
		zap.Bool("removed_from_book", removed),
	)

	return snapshot, nil
}

func (m *Manager) publish(ctx context.Context, report models.ExecutionReport) {
	if m.publisher == nil {
		return
	}

	if err := m.publisher.PublishExecution(ctx, report); err != nil {
		zapLogger.Warn(ctx, "execution report not published",
			zap.String("clordid", report.Order.ClOrdID),
			zap.String("exec_type", string(report.ExecType)),
			zap.Error(err),
		)
	}
}

func (m *Manager) rejectOrder(
	ctx context.Context,
	span trace.Span,
	clOrdID string,
	reason models.RejectReason,
	text string,
) models.Response {
	m.recordReject(ctx, span, clOrdID, reason, text)
	return models.OrderReject(clOrdID, reason, text)
}

func (m *Manager) rejectCancel(
	ctx context.Context,
	span trace.Span,
	clOrdID string,
	reason models.RejectReason,
	text string,
) models.Response {
	m.recordReject(ctx, span, clOrdID, reason, text)
	return models.CancelReject(clOrdID, reason, text)
}

func (m *Manager) recordReject(
	ctx context.Context,
	span trace.Span,
	clOrdID string,
	reason models.RejectReason,
	text string,
) {
	m.rejected.Add(1)
	m.metrics.OrderRejected(string(reason))

	span.SetStatus(codes.Error, string(reason))
	zapLogger.Info(ctx, "request rejected",
		zap.String("clordid", clOrdID),
		zap.String("reason", string(reason)),
		zap.String("text", text),
	)
}

func (m *Manager) observe(operation string, start time.Time) {
	m.metrics.ObserveLatency(operation, time.Since(start))
}

func totalQuantity(trades []models.Trade) int64 {
	var total int64
	for _, trade := range trades {
		total += trade.Quantity
	}
	return total
}
