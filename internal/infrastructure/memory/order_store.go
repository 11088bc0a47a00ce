package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	repositoryErrors "github.com/nastyazhadan/order-gateway/shared/errors/repository"
)

type OrderStore struct {
	orders    map[uint64]models.Order
	byClOrdID map[string]uint64
	trades    map[uint64]models.Trade
	mu        sync.RWMutex
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:    make(map[uint64]models.Order, 1024),
		byClOrdID: make(map[string]uint64, 1024),
		trades:    make(map[uint64]models.Trade, 1024),
	}
}

func (s *OrderStore) SaveOrder(ctx context.Context, order models.Order) error {
	const op = "storage.OrderStore.SaveOrder"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, found := s.byClOrdID[order.ClOrdID]; found && owner != order.OrderID {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderAlreadyExists)
	}

	s.orders[order.OrderID] = order
	s.byClOrdID[order.ClOrdID] = order.OrderID
	return nil
}

func (s *OrderStore) ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error) {
	const op = "storage.OrderStore.ExistsByClOrdID"

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	_, found := s.byClOrdID[clOrdID]
	s.mu.RUnlock()

	return found, nil
}

func (s *OrderStore) GetOrderByClOrdID(ctx context.Context, clOrdID string) (models.Order, error) {
	const op = "storage.OrderStore.GetOrderByClOrdID"

	select {
	case <-ctx.Done():
		return models.Order{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orderID, found := s.byClOrdID[clOrdID]
	if !found {
		return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
	}

	return s.orders[orderID], nil
}

func (s *OrderStore) MaxOrderID(ctx context.Context) (uint64, error) {
	const op = "storage.OrderStore.MaxOrderID"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID uint64
	for orderID := range s.orders {
		maxID = max(maxID, orderID)
	}

	return maxID, nil
}

// SaveTrades records executions by trade id; a repeated id overwrites.
func (s *OrderStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	const op = "storage.OrderStore.SaveTrades"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, trade := range trades {
		s.trades[trade.TradeID] = trade
	}
	return nil
}

func (s *OrderStore) MaxTradeID(ctx context.Context) (uint64, error) {
	const op = "storage.OrderStore.MaxTradeID"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxID uint64
	for tradeID := range s.trades {
		maxID = max(maxID, tradeID)
	}

	return maxID, nil
}
