package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kickvibe/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresOrderStore implements OrderStore for PostgreSQL.
type PostgresOrderStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresOrderStore(db *sqlx.DB, logger *slog.Logger) (*PostgresOrderStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresOrderStore{db: db, logger: logger}, nil
}

// cartLine is the joined row PlaceOrder snapshots from.
type cartLine struct {
	ShoeID   string  `db:"shoe_id"`
	Name     string  `db:"name"`
	Price    float64 `db:"price"`
	Quantity int     `db:"quantity"`
	Size     string  `db:"size"`
	Stock    int     `db:"stock"`
}

// PlaceOrder runs the cart-to-order conversion in one transaction.
// Stock is taken with a conditional decrement (stock = stock - q only
// when stock >= q); a miss on any line aborts the whole transaction, so
// no oversell and no half-written order is possible.
func (s *PostgresOrderStore) PlaceOrder(ctx context.Context, ownerID, shippingAddress string) (*domain.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID string
	err = tx.GetContext(ctx, &cartID, `SELECT id FROM carts WHERE owner_id = $1`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []cartLine
	linesQuery := `SELECT ci.shoe_id, s.name, s.price, ci.quantity, ci.size, s.stock
                   FROM cart_items ci
                   JOIN shoes s ON s.id = ci.shoe_id
                   WHERE ci.cart_id = $1
                   ORDER BY ci.created_at, ci.id`
	if err := tx.SelectContext(ctx, &lines, linesQuery, cartID); err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		ShippingAddress: shippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	order.UpdatedAt = order.CreatedAt

	for _, line := range lines {
		result, err := tx.ExecContext(ctx,
			`UPDATE shoes SET stock = stock - $1, updated_at = $2 WHERE id = $3 AND stock >= $1`,
			line.Quantity, order.CreatedAt, line.ShoeID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			s.logger.WarnContext(ctx, "Order rejected: insufficient stock",
				slog.String("ownerID", ownerID), slog.String("shoeID", line.ShoeID),
				slog.Int("requested", line.Quantity), slog.Int("available", line.Stock))
			return nil, &InsufficientStockError{
				ShoeID:    line.ShoeID,
				ShoeName:  line.Name,
				Requested: line.Quantity,
				Available: line.Stock,
			}
		}
		order.Items = append(order.Items, &domain.OrderItem{
			ID:       uuid.NewString(),
			OrderID:  order.ID,
			ShoeID:   line.ShoeID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Size:     line.Size,
		})
		order.TotalPrice += line.Price * float64(line.Quantity)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, owner_id, shipping_address, total_price, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		order.ID, order.OwnerID, order.ShippingAddress, order.TotalPrice, order.Status, order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, shoe_id, name, price, quantity, size)
             VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ShoeID, item.Name, item.Price, item.Quantity, item.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Order placed", slog.String("orderID", order.ID), slog.String("ownerID", ownerID), slog.Float64("total", order.TotalPrice))
	return order, nil
}

const orderColumns = `id, owner_id, shipping_address, total_price, status, created_at, updated_at`

func (s *PostgresOrderStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id`
	var orders []*domain.Order
	if err := s.db.SelectContext(ctx, &orders, query, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list orders from DB", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	for _, order := range orders {
		if err := s.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresOrderStore) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var order domain.Order
	err := s.db.GetContext(ctx, &order, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get order by ID from DB", slog.String("orderID", orderID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}
	if err := s.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *PostgresOrderStore) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, shoe_id, name, price, quantity, size
              FROM order_items WHERE order_id = $1 ORDER BY id`
	if err := s.db.SelectContext(ctx, &order.Items, query, order.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load order items from DB", slog.String("orderID", order.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to load order items: %w", err)
	}
	if order.Items == nil {
		order.Items = []*domain.OrderItem{}
	}
	return nil
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update order status in DB", slog.String("orderID", orderID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	s.logger.InfoContext(ctx, "Order status updated", slog.String("orderID", orderID), slog.String("status", string(status)))
	return nil
}
