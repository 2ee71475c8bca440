package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/models"
)

const columns = `id, name, email, password, bio, website_url, portfolio_url,
	programming_languages, expertise, avatar, reputation, created_at`

// PostgresRepository works over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Bio, &u.WebsiteURL, &u.PortfolioURL,
		&u.ProgrammingLanguages, &u.Expertise, &u.Avatar, &u.Reputation, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + columns + ` FROM users WHERE id = $1`
	return scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + columns + ` FROM users WHERE lower(email) = lower($1)`
	return scan(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password, bio, website_url, portfolio_url,
			programming_languages, expertise, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + columns

	created, err := scan(r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.Password, u.Bio, u.WebsiteURL, u.PortfolioURL,
		u.ProgrammingLanguages, u.Expertise, u.Avatar))
	if dbx.IsUniqueViolation(err) {
		return nil, fmt.Errorf("email %q: %w", u.Email, common.ErrorAlreadyExists)
	}
	return created, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			bio = COALESCE($3, bio),
			website_url = COALESCE($4, website_url),
			portfolio_url = COALESCE($5, portfolio_url),
			programming_languages = COALESCE($6, programming_languages),
			expertise = COALESCE($7, expertise),
			avatar = COALESCE($8, avatar)
		WHERE id = $1
		RETURNING ` + columns

	return scan(r.db.QueryRowContext(ctx, query, id,
		upd.Name, upd.Bio, upd.WebsiteURL, upd.PortfolioURL,
		upd.ProgrammingLanguages, upd.Expertise, upd.Avatar))
}

func (r *PostgresRepository) AddReputation(ctx context.Context, id int64, delta int) (int, error) {
	query := `UPDATE users SET reputation = reputation + $2 WHERE id = $1 RETURNING reputation`

	var total int
	if err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Top(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + columns + ` FROM users ORDER BY reputation DESC, id ASC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
