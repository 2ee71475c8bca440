// Package repomanager provides the PostgreSQL RepositoryManager, wiring the
// repository constructors together with the goose schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/devquest/codenexus/internal/dbx"
	"github.com/devquest/codenexus/internal/server/migrations"
	"github.com/devquest/codenexus/internal/server/repositories/badges"
	"github.com/devquest/codenexus/internal/server/repositories/categories"
	"github.com/devquest/codenexus/internal/server/repositories/flags"
	"github.com/devquest/codenexus/internal/server/repositories/notifications"
	"github.com/devquest/codenexus/internal/server/repositories/posts"
	"github.com/devquest/codenexus/internal/server/repositories/sessions"
	"github.com/devquest/codenexus/internal/server/repositories/subscriptions"
	"github.com/devquest/codenexus/internal/server/repositories/threads"
	"github.com/devquest/codenexus/internal/server/repositories/userbadges"
	"github.com/devquest/codenexus/internal/server/repositories/users"
	"github.com/devquest/codenexus/internal/server/repositories/votes"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Threads(db dbx.DBTX) threads.Repository {
	return threads.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Posts(db dbx.DBTX) posts.Repository {
	return posts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Votes(db dbx.DBTX) votes.Repository {
	return votes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return subscriptions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Flags(db dbx.DBTX) flags.Repository {
	return flags.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Badges(db dbx.DBTX) badges.Repository {
	return badges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) UserBadges(db dbx.DBTX) userbadges.Repository {
	return userbadges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
