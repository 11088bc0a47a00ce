package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nastyazhadan/order-gateway/internal/domain/models"
	"github.com/nastyazhadan/order-gateway/internal/infrastructure/postgres/dto"
	repositoryErrors "github.com/nastyazhadan/order-gateway/shared/errors/repository"
)

const PostgresErrorCode = "23505"

const selectOrderColumns = `SELECT order_id, cl_ord_id, symbol, side, order_type, price::TEXT AS price,
       order_qty, leaves_qty, cum_qty, username, session_sub_id, account,
       capacity, open_close, matching_unit, state, created_at, last_modified
  FROM orders`

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{
		pool: pool,
	}
}

// SaveOrder inserts the order or updates its execution state. A ClOrdID held
// by another order id is reported as ErrOrderAlreadyExists.
func (o *OrderStore) SaveOrder(ctx context.Context, order models.Order) error {
	const op = "infrastructure.OrderStore.SaveOrder"

	orderDTO := dto.FromDomain(order)

	_, err := o.pool.Exec(ctx,
		`INSERT INTO orders (order_id, cl_ord_id, symbol, side, order_type, price, order_qty,
                             leaves_qty, cum_qty, username, session_sub_id, account,
                             capacity, open_close, matching_unit, state, created_at, last_modified)
         VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
         ON CONFLICT (order_id) DO UPDATE
            SET leaves_qty    = EXCLUDED.leaves_qty,
                cum_qty       = EXCLUDED.cum_qty,
                state         = EXCLUDED.state,
                last_modified = EXCLUDED.last_modified`,
		orderDTO.OrderID,
		orderDTO.ClOrdID,
		orderDTO.Symbol,
		orderDTO.Side,
		orderDTO.Type,
		orderDTO.Price,
		orderDTO.OrderQty,
		orderDTO.LeavesQty,
		orderDTO.CumQty,
		orderDTO.Username,
		orderDTO.SessionSubID,
		orderDTO.Account,
		orderDTO.Capacity,
		orderDTO.OpenClose,
		orderDTO.MatchingUnit,
		orderDTO.State,
		orderDTO.CreatedAt,
		orderDTO.LastModified,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderAlreadyExists)
		}

		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

func (o *OrderStore) ExistsByClOrdID(ctx context.Context, clOrdID string) (bool, error) {
	const op = "infrastructure.OrderStore.ExistsByClOrdID"

	var exists bool
	err := o.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE cl_ord_id = $1)`,
		clOrdID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: query: %w", op, err)
	}

	return exists, nil
}

func (o *OrderStore) GetOrderByClOrdID(ctx context.Context, clOrdID string) (models.Order, error) {
	const op = "infrastructure.OrderStore.GetOrderByClOrdID"

	rows, err := o.pool.Query(ctx, selectOrderColumns+` WHERE cl_ord_id = $1 LIMIT 1`, clOrdID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: query: %w", op, err)
	}

	orderDTO, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dto.Order])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, fmt.Errorf("%s: %w", op, repositoryErrors.ErrOrderNotFound)
		}

		return models.Order{}, fmt.Errorf("%s: collect: %w", op, err)
	}

	order, err := orderDTO.ToDomain()
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	return order, nil
}

// MaxOrderID returns the highest persisted order id, zero for an empty table.
func (o *OrderStore) MaxOrderID(ctx context.Context) (uint64, error) {
	const op = "infrastructure.OrderStore.MaxOrderID"

	var maxID int64
	if err := o.pool.QueryRow(ctx, `SELECT COALESCE(MAX(order_id), 0) FROM orders`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("%s: query: %w", op, err)
	}

	return uint64(maxID), nil
}

// SaveTrades inserts the executions in one batch. A trade id already stored
// is left as it is.
func (o *OrderStore) SaveTrades(ctx context.Context, trades []models.Trade) error {
	const op = "infrastructure.OrderStore.SaveTrades"

	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(
			`INSERT INTO trades (trade_id, symbol, price, quantity, notional_value, buy_order_id,
                                 sell_order_id, buy_username, sell_username, executed_at)
             VALUES ($1, $2, $3::NUMERIC, $4, $5::NUMERIC, $6, $7, $8, $9, $10)
             ON CONFLICT (trade_id) DO NOTHING`,
			int64(trade.TradeID),
			trade.Symbol,
			trade.Price.String(),
			trade.Quantity,
			trade.NotionalValue.String(),
			int64(trade.BuyOrderID),
			int64(trade.SellOrderID),
			trade.BuyUsername,
			trade.SellUsername,
			trade.ExecutionTime,
		)
	}

	if err := o.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: batch: %w", op, err)
	}

	return nil
}

// MaxTradeID returns the highest persisted trade id, zero for an empty table.
func (o *OrderStore) MaxTradeID(ctx context.Context) (uint64, error) {
	const op = "infrastructure.OrderStore.MaxTradeID"

	var maxID int64
	if err := o.pool.QueryRow(ctx, `SELECT COALESCE(MAX(trade_id), 0) FROM trades`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("%s: query: %w", op, err)
	}

	return uint64(maxID), nil
}

func isDuplicateKey(err error) bool {
	var postgresErr *pgconn.PgError

	if errors.As(err, &postgresErr) {
		return postgresErr.Code == PostgresErrorCode
	}

	return false
}
