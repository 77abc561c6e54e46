package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kickvibe/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresReviewStore implements ReviewStore for PostgreSQL.
type PostgresReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresReviewStore(db *sqlx.DB, logger *slog.Logger) (*PostgresReviewStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresReviewStore{db: db, logger: logger}, nil
}

// Create inserts a review. The uq_user_shoe_review constraint turns a
// second review of the same shoe by the same user into ErrDuplicateReview.
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (id, shoe_id, user_id, rating, comment, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`

	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create review query",
		slog.String("reviewID", review.ID),
		slog.String("shoeID", review.ShoeID),
		slog.String("userID", review.UserID))
	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.ShoeID, review.UserID, review.Rating, review.Comment,
		review.CreatedAt, review.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			if pqErr.Constraint == "uq_user_shoe_review" {
				s.logger.WarnContext(ctx, "User has already reviewed this shoe (DB constraint)",
					slog.String("shoeID", review.ShoeID), slog.String("userID", review.UserID))
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review due to unique constraint %s: %w", pqErr.Constraint, err)
		}
		s.logger.ErrorContext(ctx, "Failed to create review in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create review: %w", err)
	}
	s.logger.InfoContext(ctx, "Review created successfully in DB", slog.String("reviewID", review.ID))
	return nil
}

func (s *PostgresReviewStore) ListByShoe(ctx context.Context, shoeID string, params ReviewListParams) ([]*domain.Review, int, error) {
	var totalCount int
	if err := s.db.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM reviews WHERE shoe_id = $1`, shoeID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count reviews in DB", slog.String("shoeID", shoeID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	if totalCount == 0 {
		return []*domain.Review{}, 0, nil
	}

	query := `SELECT r.id, r.shoe_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
                     u.username
              FROM reviews r
              JOIN users u ON u.id = r.user_id
              WHERE r.shoe_id = $1
              ORDER BY r.created_at DESC, r.id
              LIMIT $2 OFFSET $3`
	var reviews []*domain.Review
	err := s.db.SelectContext(ctx, &reviews, query, shoeID, params.PageSize, (params.Page-1)*params.PageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviews from DB", slog.String("shoeID", shoeID), slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, totalCount, nil
}
