package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kickvibe/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresCartStore implements CartStore for PostgreSQL.
type PostgresCartStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresCartStore(db *sqlx.DB, logger *slog.Logger) (*PostgresCartStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresCartStore{db: db, logger: logger}, nil
}

// GetOrCreate loads the user's single cart, creating it on first use.
// The carts.owner_id unique constraint makes the lazy insert race-safe:
// ON CONFLICT DO NOTHING and re-read.
func (s *PostgresCartStore) GetOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error) {
	insert := `INSERT INTO carts (id, owner_id, created_at, updated_at)
               VALUES ($1, $2, $3, $3)
               ON CONFLICT (owner_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, insert, uuid.NewString(), ownerID, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to ensure cart exists", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	var cart domain.Cart
	query := `SELECT id, owner_id, created_at, updated_at FROM carts WHERE owner_id = $1`
	if err := s.db.GetContext(ctx, &cart, query, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load cart", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	itemsQuery := `SELECT ci.id, ci.cart_id, ci.shoe_id, ci.size, ci.quantity, ci.created_at, ci.updated_at,
                          s.name AS shoe_name, s.price AS shoe_price, s.stock AS shoe_stock
                   FROM cart_items ci
                   JOIN shoes s ON s.id = ci.shoe_id
                   WHERE ci.cart_id = $1
                   ORDER BY ci.created_at, ci.id`
	if err := s.db.SelectContext(ctx, &cart.Items, itemsQuery, cart.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load cart items", slog.String("cartID", cart.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []*domain.CartItem{}
	}
	return &cart, nil
}

// AddItem merges into an existing line with the same shoe and size, or
// appends a new one. The merge is a single upsert against the
// (cart_id, shoe_id, size) unique constraint, so two concurrent adds of
// the same line cannot lose an increment.
func (s *PostgresCartStore) AddItem(ctx context.Context, cartID, shoeID, size string, quantity int) error {
	query := `INSERT INTO cart_items (id, cart_id, shoe_id, size, quantity, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $6)
              ON CONFLICT (cart_id, shoe_id, size)
              DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`

	s.logger.DebugContext(ctx, "Executing AddItem upsert", slog.String("cartID", cartID), slog.String("shoeID", shoeID), slog.String("size", size), slog.Int("quantity", quantity))
	if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), cartID, shoeID, size, quantity, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add cart item", slog.String("cartID", cartID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (s *PostgresCartStore) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	query := `UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3 AND cart_id = $4`
	result, err := s.db.ExecContext(ctx, query, quantity, time.Now().UTC(), itemID, cartID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update cart item", slog.String("itemID", itemID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *PostgresCartStore) RemoveItem(ctx context.Context, cartID, itemID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove cart item", slog.String("itemID", itemID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check remove result: %w", err)
	} else if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}
