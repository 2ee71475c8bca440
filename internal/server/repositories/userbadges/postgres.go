package userbadges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanOne(row *sql.Row) (*models.UserBadge, error) {
	ub := &models.UserBadge{}
	if err := row.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt, &ub.DisplayOnProfile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ub, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.UserBadgeWithBadge, error) {
	query := `
		SELECT ub.user_id, ub.badge_id, ub.earned_at, ub.display_on_profile,
			b.id, b.name, b.description, b.icon, b.color, b.category, b.level,
			b.reputation_points, b.criteria, b.created_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.display_on_profile DESC, b.level DESC, ub.earned_at DESC, ub.badge_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.UserBadgeWithBadge, 0)
	for rows.Next() {
		item := &models.UserBadgeWithBadge{Badge: &models.Badge{}}
		b := item.Badge
		if err := rows.Scan(&item.UserID, &item.BadgeID, &item.EarnedAt, &item.DisplayOnProfile,
			&b.ID, &b.Name, &b.Description, &b.Icon, &b.Color, &b.Category, &b.Level,
			&b.ReputationPoints, &b.Criteria, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	query := `SELECT user_id, badge_id, earned_at, display_on_profile FROM user_badges
		WHERE user_id = $1 AND badge_id = $2`
	return scanOne(r.db.QueryRowContext(ctx, query, userID, badgeID))
}

func (r *PostgresRepository) Insert(ctx context.Context, userID, badgeID int64) (*models.UserBadge, bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
		RETURNING user_id, badge_id, earned_at, display_on_profile
	`
	ub, err := scanOne(r.db.QueryRowContext(ctx, query, userID, badgeID))
	if errors.Is(err, common.ErrorNotFound) {
		existing, err := r.Get(ctx, userID, badgeID)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return ub, true, nil
}

func (r *PostgresRepository) UpdateDisplay(ctx context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error) {
	query := `UPDATE user_badges SET display_on_profile = $3
		WHERE user_id = $1 AND badge_id = $2
		RETURNING user_id, badge_id, earned_at, display_on_profile`
	return scanOne(r.db.QueryRowContext(ctx, query, userID, badgeID, display))
}
