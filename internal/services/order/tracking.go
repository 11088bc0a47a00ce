package order

import (
	"sort"
	"sync"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
)

// retiredOrder is what stays behind once an order leaves the index: enough to
// keep its ClOrdID taken and to answer a late cancel.
type retiredOrder struct {
	username  string
	state     models.OrderState
	// cancelled on the owner's request; a repeat cancel reports not found
	cancelled bool
}

type trackingIndex struct {
	mu       sync.RWMutex
	orders   map[string]*models.Order
	clOrdIDs map[uint64]string
	retired  map[string]retiredOrder
}

func newTrackingIndex() *trackingIndex {
	return &trackingIndex{
		orders:   make(map[string]*models.Order, 1024),
		clOrdIDs: make(map[uint64]string, 1024),
		retired:  make(map[string]retiredOrder, 1024),
	}
}

// InsertIfAbsent stores the order built by build under clOrdID unless the
// id is tracked or retired. build runs under the index lock, so the check,
// the construction and the insert are one step.
func (t *trackingIndex) InsertIfAbsent(
	clOrdID string,
	build func() (*models.Order, error),
) (*models.Order, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, found := t.orders[clOrdID]; found {
		return existing, false, nil
	}
	if _, found := t.retired[clOrdID]; found {
		return nil, false, nil
	}

	order, err := build()
	if err != nil {
		return nil, false, err
	}

	t.orders[clOrdID] = order
	t.clOrdIDs[order.OrderID] = clOrdID
	return order, true, nil
}

func (t *trackingIndex) Get(clOrdID string) (*models.Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	order, found := t.orders[clOrdID]
	return order, found
}

func (t *trackingIndex) GetByOrderID(orderID uint64) (*models.Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	clOrdID, found := t.clOrdIDs[orderID]
	if !found {
		return nil, false
	}
	order, found := t.orders[clOrdID]
	return order, found
}

func (t *trackingIndex) Retired(clOrdID string) (retiredOrder, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	retired, found := t.retired[clOrdID]
	return retired, found
}

// Release forgets clOrdID entirely. Only for orders that never reached the
// book or the repository.
func (t *trackingIndex) Release(clOrdID string, order *models.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.orders[clOrdID] == order {
		delete(t.orders, clOrdID)
		delete(t.clOrdIDs, order.OrderID)
	}
}

// Retire moves clOrdID from the live orders to the tombstones while it still
// maps to order. It reports whether this call did the move.
func (t *trackingIndex) Retire(clOrdID string, order *models.Order, tombstone retiredOrder) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.orders[clOrdID] != order {
		return false
	}

	delete(t.orders, clOrdID)
	delete(t.clOrdIDs, order.OrderID)
	t.retired[clOrdID] = tombstone
	return true
}

// Select returns the matching live orders in admission order. Only fields
// fixed at construction may be read by match.
func (t *trackingIndex) Select(match func(*models.Order) bool) []*models.Order {
	t.mu.RLock()
	selected := make([]*models.Order, 0)
	for _, order := range t.orders {
		if match(order) {
			selected = append(selected, order)
		}
	}
	t.mu.RUnlock()

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].OrderID < selected[j].OrderID
	})

	return selected
}

func (t *trackingIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.orders)
}

func (t *trackingIndex) RetiredLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.retired)
}
