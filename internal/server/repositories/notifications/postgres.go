package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, user_id, type, content, related_id, is_read, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Notification, error) {
	n := &models.Notification{}
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Notification, error) {
	query := `SELECT ` + columns + ` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var n int
	query := `SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, content, related_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, n.UserID, n.Type, n.Content, n.RelatedID))
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
