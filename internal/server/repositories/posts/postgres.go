package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, content, user_id, thread_id, parent_id, created_at, updated_at, is_deleted`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.Content, &p.UserID, &p.ThreadID, &p.ParentID, &p.CreatedAt, &p.UpdatedAt, &p.IsDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByThread(ctx context.Context, threadID int64, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + columns + ` FROM posts
		WHERE thread_id = $1 AND NOT is_deleted
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, threadID, limit, offset)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + columns + ` FROM posts
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) Search(ctx context.Context, q string, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + columns + ` FROM posts
		WHERE NOT is_deleted AND strpos(lower(content), lower($1)) > 0
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, q, limit, offset)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + columns + ` FROM posts WHERE id = $1 AND NOT is_deleted`
	return scan(r.db.QueryRowContext(ctx, query, id))
}

// Owner returns the author of a post, deleted or not.
func (r *PostgresRepository) Owner(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (content, user_id, thread_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, p.Content, p.UserID, p.ThreadID, p.ParentID))
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.PostUpdate) (*models.Post, error) {
	query := `
		UPDATE posts SET
			content = COALESCE($2, content),
			is_deleted = COALESCE($3, is_deleted),
			updated_at = now()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, upd.Content, upd.IsDeleted))
}

func (r *PostgresRepository) count(ctx context.Context, query string, arg int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByThread(ctx context.Context, threadID int64) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM posts WHERE thread_id = $1 AND NOT is_deleted`, threadID)
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM posts WHERE user_id = $1 AND NOT is_deleted`, userID)
}
