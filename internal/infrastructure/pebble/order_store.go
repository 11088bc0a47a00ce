package pebble

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	repositoryErrors "github.com/nastyazhadan/order-gateway/shared/errors/repository"
)

var (
	orderPrefix   = []byte("o/")
	clOrdIDPrefix = []byte("c/")
	tradePrefix   = []byte("t/")
)

// OrderStore journals orders in an embedded pebble database. Orders are keyed
// by big-endian order id so the last key holds the highest id.
type OrderStore struct {
	db *pebble.DB

	// serializes the ClOrdID ownership check with the write
	writeMu sync.Mutex
}

type Options struct {
	Dir string
	// FS overrides the filesystem, vfs.NewMem() in tests.
	FS vfs.FS
}

func NewOrderStore(options Options) (*OrderStore, error) {
	const op = "infrastructure.pebble.NewOrderStore"

	pebbleOptions := &pebble.Options{}
	if options.FS != nil {
		pebbleOptions.FS = options.FS
	}

	db, err := pebble.Open(options.Dir, pebbleOptions)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}

	return &OrderStore{db: db}, nil
}

func (s *OrderStore) Close() error {
	return s.db.Close()
}

func (s *OrderStore) SaveOrder(ctx context.Context, order models.Order) error {
	const op = "infrastructure.pebble.OrderStore.SaveOrder"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	value, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	owner, found, err := s.clOrdIDOwner(order.ClOrdID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if found && owner != order.OrderID {
		return fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderAlreadyExists)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(orderKey(order.OrderID), value, nil); err != nil {
		return fmt.Errorf("%s: set order: %w", op, err)
	}
	if err := batch.Set(clOrdIDKey(order.ClOrdID), encodeID(order.OrderID), nil); err != nil {
		return fmt.Errorf("%s: set clordid: %w", op, err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%s: commit: %w", op, mapPebbleError(err))
	}

	return nil
}

func (s *OrderStore) ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error) {
	const op = "infrastructure.pebble.OrderStore.ExistsByClOrdID"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, found, err := s.clOrdIDOwner(clOrdID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return found, nil
}

func (s *OrderStore) GetOrderByClOrdID(ctx context.Context, clOrdID string) (models.Order, error) {
	const op = "infrastructure.pebble.OrderStore.GetOrderByClOrdID"

	if err := ctx.Err(); err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	orderID, found, err := s.clOrdIDOwner(clOrdID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
	}

	value, closer, err := s.db.Get(orderKey(orderID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
		}
		return models.Order{}, fmt.Errorf("%s: get: %w", op, mapPebbleError(err))
	}
	defer closer.Close()

	var order models.Order
	if err := json.Unmarshal(value, &order); err != nil {
		return models.Order{}, fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	return order, nil
}

// MaxOrderID returns the highest journalled order id, zero when empty.
func (s *OrderStore) MaxOrderID(ctx context.Context) (uint64, error) {
	const op = "infrastructure.pebble.OrderStore.MaxOrderID"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	orderID, err := s.lastID(orderPrefix)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return orderID, nil
}

// SaveTrades journals executions under big-endian trade ids in one synced
// batch.
func (s *OrderStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	const op = "infrastructure.pebble.OrderStore.SaveTrades"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, trade := range trades {
		value, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}
		if err := batch.Set(tradeKey(trade.TradeID), value, nil); err != nil {
			return fmt.Errorf("%s: set trade: %w", op, err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%s: commit: %w", op, mapPebbleError(err))
	}

	return nil
}

func (s *OrderStore) MaxTradeID(ctx context.Context) (uint64, error) {
	const op = "infrastructure.pebble.OrderStore.MaxTradeID"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tradeID, err := s.lastID(tradePrefix)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tradeID, nil
}

func (s *OrderStore) lastID(prefix []byte) (uint64, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return 0, fmt.Errorf("iter: %w", mapPebbleError(err))
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, nil
	}

	return binary.BigEndian.Uint64(bytes.TrimPrefix(iter.Key(), prefix)), nil
}

func (s *OrderStore) clOrdIDOwner(clOrdID string) (uint64, bool, error) {
	value, closer, err := s.db.Get(clOrdIDKey(clOrdID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get clordid: %w", mapPebbleError(err))
	}
	defer closer.Close()

	return binary.BigEndian.Uint64(value), true, nil
}

func orderKey(orderID uint64) []byte {
	return append(bytes.Clone(orderPrefix), encodeID(orderID)...)
}

func tradeKey(tradeID uint64) []byte {
	return append(bytes.Clone(tradePrefix), encodeID(tradeID)...)
}

func clOrdIDKey(clOrdID string) []byte {
	return append(bytes.Clone(clOrdIDPrefix), clOrdID...)
}

func encodeID(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func prefixUpperBound(prefix []byte) []byte {
	upper := bytes.Clone(prefix)
	upper[len(upper)-1]++
	return upper
}

func mapPebbleError(err error) error {
	if errors.Is(err, pebble.ErrClosed) {
		return fmt.Errorf("%w: %w", repositoryErrors.ErrStoreClosed, err)
	}
	return err
}
