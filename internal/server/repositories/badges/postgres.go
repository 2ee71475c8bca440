package badges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, name, description, icon, color, category, level, reputation_points, criteria, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Badge, error) {
	b := &models.Badge{}
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Color, &b.Category, &b.Level,
		&b.ReputationPoints, &b.Criteria, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.BadgeFilter) ([]*models.Badge, error) {
	query := `SELECT ` + columns + ` FROM badges
		WHERE ($1 = '' OR category = $1) AND ($2 = 0 OR level = $2)
		ORDER BY level ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, filter.Category, filter.Level)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Badge, 0)
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Badge, error) {
	return scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM badges WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	return scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM badges WHERE lower(name) = lower($1)`, name))
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	query := `
		INSERT INTO badges (name, description, icon, color, category, level, reputation_points, criteria)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns
	created, err := scan(r.db.QueryRowContext(ctx, query,
		b.Name, b.Description, b.Icon, b.Color, b.Category, b.Level, b.ReputationPoints, b.Criteria))
	if dbx.IsUniqueViolation(err) {
		return nil, fmt.Errorf("badge %q: %w", b.Name, common.ErrorAlreadyExists)
	}
	return created, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error) {
	query := `
		UPDATE badges SET
			description = COALESCE($2, description),
			icon = COALESCE($3, icon),
			color = COALESCE($4, color),
			category = COALESCE($5, category),
			level = COALESCE($6, level),
			reputation_points = COALESCE($7, reputation_points),
			criteria = COALESCE($8, criteria)
		WHERE id = $1
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id,
		upd.Description, upd.Icon, upd.Color, upd.Category, upd.Level, upd.ReputationPoints, upd.Criteria))
}
