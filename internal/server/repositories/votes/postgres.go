package votes

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

func (r *PostgresRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Vote, error) {
	query := `SELECT user_id, post_id, value, created_at FROM votes WHERE post_id = $1 ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Vote, 0)
	for rows.Next() {
		v := &models.Vote{}
		if err := rows.Scan(&v.UserID, &v.PostID, &v.Value, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, postID int64) (*models.Vote, error) {
	query := `SELECT user_id, post_id, value, created_at FROM votes WHERE user_id = $1 AND post_id = $2`

	v := &models.Vote{}
	if err := r.db.QueryRowContext(ctx, query, userID, postID).Scan(&v.UserID, &v.PostID, &v.Value, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, v *models.Vote) (*models.Vote, error) {
	query := `
		INSERT INTO votes (user_id, post_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id)
		DO UPDATE SET value = EXCLUDED.value, created_at = now()
		RETURNING created_at
	`
	stored := *v
	if err := r.db.QueryRowContext(ctx, query, v.UserID, v.PostID, v.Value).Scan(&stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &stored, nil
}
