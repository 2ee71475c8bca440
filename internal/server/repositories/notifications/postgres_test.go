package notifications

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationColumns = []string{"id", "user_id", "type", "content", "related_id", "is_read", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	related := int64(12)
	mock.ExpectQuery(`(?s)INSERT INTO notifications \(user_id, type, content, related_id\)`).
		WithArgs(int64(1), models.NotificationThreadReply, "ada replied", int64(12)).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(int64(1), int64(1), models.NotificationThreadReply, "ada replied", int64(12), false, time.Now()))

	n, err := repo.Create(context.Background(), &models.Notification{
		UserID: 1, Type: models.NotificationThreadReply, Content: "ada replied", RelatedID: &related,
	})
	require.NoError(t, err)
	assert.False(t, n.IsRead)
	assert.Equal(t, int64(12), *n.RelatedID)
}

func TestMarkRead_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE notifications SET is_read = TRUE WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), 5)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCountUnread(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`count\(\*\) FROM notifications WHERE user_id = \$1 AND NOT is_read`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
