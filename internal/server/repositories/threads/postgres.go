package threads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, title, user_id, category_id, created_at, updated_at, view_count, is_pinned, is_closed`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Thread, error) {
	t := &models.Thread{}
	err := row.Scan(&t.ID, &t.Title, &t.UserID, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt,
		&t.ViewCount, &t.IsPinned, &t.IsClosed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*models.Thread, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryID != 0 {
		add("category_id = $%d", f.CategoryID)
	}
	if f.UserID != 0 {
		add("user_id = $%d", f.UserID)
	}
	if f.Query != "" {
		add("strpos(lower(title), lower($%d)) > 0", f.Query)
	}

	query := `SELECT ` + columns + ` FROM threads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Popular {
		query += ` ORDER BY view_count DESC, created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Thread, 0)
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Thread, error) {
	query := `SELECT ` + columns + ` FROM threads WHERE id = $1`
	return scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Thread) (*models.Thread, error) {
	query := `
		INSERT INTO threads (title, user_id, category_id)
		VALUES ($1, $2, $3)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, t.Title, t.UserID, t.CategoryID))
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error) {
	query := `
		UPDATE threads SET
			title = COALESCE($2, title),
			category_id = COALESCE($3, category_id),
			is_pinned = COALESCE($4, is_pinned),
			is_closed = COALESCE($5, is_closed),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, upd.Title, upd.CategoryID, upd.IsPinned, upd.IsClosed))
}

func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id int64) error {
	query := `UPDATE threads SET view_count = view_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE threads SET updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT count(*) FROM threads WHERE user_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
