package flags

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

var flagColumns = []string{"id", "user_id", "post_id", "reason", "status", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate_AlwaysPending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO flags`).
		WithArgs(int64(1), int64(2), "spam", models.FlagPending).
		WillReturnRows(sqlmock.NewRows(flagColumns).AddRow(int64(1), int64(1), int64(2), "spam", "pending", time.Now()))

	f, err := repo.Create(context.Background(), &models.Flag{UserID: 1, PostID: 2, Reason: "spam", Status: models.FlagResolved})
	require.NoError(t, err)
	assert.Equal(t, models.FlagPending, f.Status)
}

func TestList_StatusFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE \(\$1 = '' OR status = \$1\)`).
		WithArgs("", 20, 0).
		WillReturnRows(sqlmock.NewRows(flagColumns))

	got, err := repo.List(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE flags SET status = \$2 WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), 9, models.FlagResolved)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
