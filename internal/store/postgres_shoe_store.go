package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kickvibe/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresShoeStore implements ShoeStore for PostgreSQL.
type PostgresShoeStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresShoeStore(db *sqlx.DB, logger *slog.Logger) (*PostgresShoeStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresShoeStore{db: db, logger: logger}, nil
}

const shoeColumns = `id, name, description, price, brand, category, sizes, images, stock, owner_id, is_featured, created_at, updated_at`

func (s *PostgresShoeStore) Create(ctx context.Context, shoe *domain.Shoe) error {
	query := `INSERT INTO shoes (id, name, description, price, brand, category, sizes, images, stock, owner_id, is_featured, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	shoe.CreatedAt = time.Now().UTC()
	shoe.UpdatedAt = shoe.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create shoe query", slog.String("shoeID", shoe.ID), slog.String("name", shoe.Name))
	_, err := s.db.ExecContext(ctx, query,
		shoe.ID, shoe.Name, shoe.Description, shoe.Price, shoe.Brand, shoe.Category,
		pq.Array(shoe.Sizes), pq.Array(shoe.Images), shoe.Stock, shoe.OwnerID, shoe.IsFeatured,
		shoe.CreatedAt, shoe.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create shoe in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create shoe: %w", err)
	}
	s.logger.InfoContext(ctx, "Shoe created successfully in DB", slog.String("shoeID", shoe.ID))
	return nil
}

func (s *PostgresShoeStore) GetByID(ctx context.Context, id string) (*domain.Shoe, error) {
	query := `SELECT ` + shoeColumns + ` FROM shoes WHERE id = $1`
	var shoe domain.Shoe
	err := s.db.GetContext(ctx, &shoe, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShoeNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get shoe by ID from DB", slog.String("shoeID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get shoe by ID: %w", err)
	}
	return &shoe, nil
}

func (s *PostgresShoeStore) Update(ctx context.Context, shoe *domain.Shoe) error {
	query := `UPDATE shoes SET name = $1, description = $2, price = $3, brand = $4, category = $5,
              sizes = $6, images = $7, stock = $8, is_featured = $9, updated_at = $10
              WHERE id = $11`
	shoe.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query,
		shoe.Name, shoe.Description, shoe.Price, shoe.Brand, shoe.Category,
		pq.Array(shoe.Sizes), pq.Array(shoe.Images), shoe.Stock, shoe.IsFeatured,
		shoe.UpdatedAt, shoe.ID,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update shoe in DB", slog.String("shoeID", shoe.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update shoe: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrShoeNotFound
	}
	s.logger.InfoContext(ctx, "Shoe updated successfully in DB", slog.String("shoeID", shoe.ID))
	return nil
}

func (s *PostgresShoeStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shoes WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete shoe from DB", slog.String("shoeID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete shoe: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrShoeNotFound
	}
	s.logger.InfoContext(ctx, "Shoe deleted from DB", slog.String("shoeID", id))
	return nil
}

// List applies the sparse filters, counts the matches and selects one
// page. Ordering is explicit (created_at DESC, id) so offset pagination
// does not shift under concurrent writes.
func (s *PostgresShoeStore) List(ctx context.Context, params ShoeListParams) ([]*domain.Shoe, int, error) {
	countQuery := `SELECT COUNT(*) FROM shoes WHERE 1=1`
	selectQuery := `SELECT ` + shoeColumns + ` FROM shoes WHERE 1=1`

	var args []interface{}
	var conditions []string
	argID := 1

	if params.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("brand = $%d", argID))
		args = append(args, params.Brand)
		argID++
	}
	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, params.Category)
		argID++
	}
	if params.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argID))
		args = append(args, *params.MinPrice)
		argID++
	}
	if params.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argID))
		args = append(args, *params.MaxPrice)
		argID++
	}

	if len(conditions) > 0 {
		conditionStr := " AND " + strings.Join(conditions, " AND ")
		countQuery += conditionStr
		selectQuery += conditionStr
	}

	var totalCount int
	s.logger.DebugContext(ctx, "Executing List shoes count query", slog.String("query", countQuery), slog.Any("args", args))
	if err := s.db.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count shoes in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count shoes: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Shoe{}, 0, nil
	}

	selectQuery += " ORDER BY created_at DESC, id"
	selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var shoes []*domain.Shoe
	if err := s.db.SelectContext(ctx, &shoes, selectQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list shoes from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list shoes: %w", err)
	}
	if shoes == nil {
		shoes = []*domain.Shoe{}
	}
	return shoes, totalCount, nil
}

// Search runs full-text search over name, description, brand and
// category, ordered by descending ts_rank. No match is an empty slice.
func (s *PostgresShoeStore) Search(ctx context.Context, query string) ([]*domain.Shoe, error) {
	searchQuery := `SELECT ` + shoeColumns + `
        FROM shoes
        WHERE to_tsvector('english', name || ' ' || description || ' ' || brand || ' ' || category) @@ plainto_tsquery('english', $1)
        ORDER BY ts_rank(to_tsvector('english', name || ' ' || description || ' ' || brand || ' ' || category), plainto_tsquery('english', $1)) DESC`

	var shoes []*domain.Shoe
	s.logger.DebugContext(ctx, "Executing Search shoes query", slog.String("q", query))
	if err := s.db.SelectContext(ctx, &shoes, searchQuery, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to search shoes in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to search shoes: %w", err)
	}
	if shoes == nil {
		shoes = []*domain.Shoe{}
	}
	return shoes, nil
}

func (s *PostgresShoeStore) NewArrivals(ctx context.Context, limit int) ([]*domain.Shoe, error) {
	query := `SELECT ` + shoeColumns + ` FROM shoes ORDER BY created_at DESC, id LIMIT $1`
	var shoes []*domain.Shoe
	if err := s.db.SelectContext(ctx, &shoes, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load new arrivals from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load new arrivals: %w", err)
	}
	if shoes == nil {
		shoes = []*domain.Shoe{}
	}
	return shoes, nil
}

func (s *PostgresShoeStore) Featured(ctx context.Context, limit int) ([]*domain.Shoe, error) {
	query := `SELECT ` + shoeColumns + ` FROM shoes WHERE is_featured = TRUE ORDER BY created_at DESC, id LIMIT $1`
	var shoes []*domain.Shoe
	if err := s.db.SelectContext(ctx, &shoes, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load featured shoes from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load featured shoes: %w", err)
	}
	if shoes == nil {
		shoes = []*domain.Shoe{}
	}
	return shoes, nil
}
