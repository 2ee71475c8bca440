package flags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, user_id, post_id, reason, status, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Flag, error) {
	f := &models.Flag{}
	if err := row.Scan(&f.ID, &f.UserID, &f.PostID, &f.Reason, &f.Status, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Flag, error) {
	query := `SELECT ` + columns + ` FROM flags
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Flag, 0)
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.Flag) (*models.Flag, error) {
	query := `
		INSERT INTO flags (user_id, post_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, f.UserID, f.PostID, f.Reason, models.FlagPending))
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Flag, error) {
	query := `UPDATE flags SET status = $2 WHERE id = $1 RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, status))
}
