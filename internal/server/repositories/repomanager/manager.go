package repomanager

import (
	"context"
	"database/sql"

	"github.com/devquest/codenexus/internal/dbx"
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
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Threads(db dbx.DBTX) threads.Repository
	Posts(db dbx.DBTX) posts.Repository
	Votes(db dbx.DBTX) votes.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Flags(db dbx.DBTX) flags.Repository
	Badges(db dbx.DBTX) badges.Repository
	UserBadges(db dbx.DBTX) userbadges.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
