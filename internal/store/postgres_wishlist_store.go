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

// PostgresWishlistStore implements WishlistStore for PostgreSQL.
type PostgresWishlistStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresWishlistStore(db *sqlx.DB, logger *slog.Logger) (*PostgresWishlistStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresWishlistStore{db: db, logger: logger}, nil
}

func (s *PostgresWishlistStore) ensure(ctx context.Context, ownerID string) (string, error) {
	insert := `INSERT INTO wishlists (id, owner_id, created_at, updated_at)
               VALUES ($1, $2, $3, $3)
               ON CONFLICT (owner_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, insert, uuid.NewString(), ownerID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to ensure wishlist: %w", err)
	}
	var id string
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM wishlists WHERE owner_id = $1`, ownerID); err != nil {
		return "", fmt.Errorf("failed to load wishlist: %w", err)
	}
	return id, nil
}

func (s *PostgresWishlistStore) GetByOwner(ctx context.Context, ownerID string) (*domain.Wishlist, error) {
	if _, err := s.ensure(ctx, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to ensure wishlist", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, err
	}

	var wishlist domain.Wishlist
	query := `SELECT id, owner_id, created_at, updated_at FROM wishlists WHERE owner_id = $1`
	if err := s.db.GetContext(ctx, &wishlist, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	shoesQuery := `SELECT ` + prefixedShoeColumns("s") + `
                   FROM wishlist_shoes ws
                   JOIN shoes s ON s.id = ws.shoe_id
                   WHERE ws.wishlist_id = $1
                   ORDER BY ws.added_at DESC`
	if err := s.db.SelectContext(ctx, &wishlist.Shoes, shoesQuery, wishlist.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load wishlist shoes", slog.String("wishlistID", wishlist.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load wishlist shoes: %w", err)
	}
	if wishlist.Shoes == nil {
		wishlist.Shoes = []*domain.Shoe{}
	}
	return &wishlist, nil
}

// Toggle removes the membership row if present, otherwise inserts it.
// The delete-first approach makes the toggle a single round trip per
// branch and keeps the result derivable from rows affected.
func (s *PostgresWishlistStore) Toggle(ctx context.Context, ownerID, shoeID string) (bool, error) {
	wishlistID, err := s.ensure(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to ensure wishlist", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return false, err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlist_shoes WHERE wishlist_id = $1 AND shoe_id = $2`, wishlistID, shoeID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist shoe: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		s.logger.InfoContext(ctx, "Shoe removed from wishlist", slog.String("ownerID", ownerID), slog.String("shoeID", shoeID))
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wishlist_shoes (wishlist_id, shoe_id, added_at) VALUES ($1, $2, $3)
         ON CONFLICT (wishlist_id, shoe_id) DO NOTHING`,
		wishlistID, shoeID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add wishlist shoe: %w", err)
	}
	s.logger.InfoContext(ctx, "Shoe added to wishlist", slog.String("ownerID", ownerID), slog.String("shoeID", shoeID))
	return true, nil
}

// prefixedShoeColumns aliases the shoe columns for joined selects so
// sqlx maps them onto domain.Shoe.
func prefixedShoeColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.description, ` + alias + `.price, ` +
		alias + `.brand, ` + alias + `.category, ` + alias + `.sizes, ` + alias + `.images, ` +
		alias + `.stock, ` + alias + `.owner_id, ` + alias + `.is_featured, ` + alias + `.created_at, ` + alias + `.updated_at`
}
