package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, user_id, thread_id, category_id, notify_by_email, notify_in_platform, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(&s.ID, &s.UserID, &s.ThreadID, &s.CategoryID, &s.NotifyByEmail, &s.NotifyInPlatform, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Subscription, 0)
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	return r.list(ctx, `SELECT `+columns+` FROM subscriptions WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PostgresRepository) Find(ctx context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error) {
	query := `SELECT ` + columns + ` FROM subscriptions
		WHERE user_id = $1 AND (thread_id = $2 OR category_id = $3)
		ORDER BY id
		LIMIT 1`
	return scan(r.db.QueryRowContext(ctx, query, userID, threadID, categoryID))
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Subscription, error) {
	return scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM subscriptions WHERE id = $1`, id))
}

func (r *PostgresRepository) ListSubscribers(ctx context.Context, threadID, categoryID int64) ([]*models.Subscription, error) {
	query := `SELECT ` + columns + ` FROM subscriptions
		WHERE thread_id = $1 OR category_id = $2
		ORDER BY id`
	return r.list(ctx, query, threadID, categoryID)
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, thread_id, category_id, notify_by_email, notify_in_platform)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, s.UserID, s.ThreadID, s.CategoryID, s.NotifyByEmail, s.NotifyInPlatform))
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	query := `
		UPDATE subscriptions SET
			notify_by_email = COALESCE($2, notify_by_email),
			notify_in_platform = COALESCE($3, notify_in_platform)
		WHERE id = $1
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, upd.NotifyByEmail, upd.NotifyInPlatform))
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
