package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumns = []string{"id", "content", "user_id", "thread_id", "parent_id", "created_at", "updated_at", "is_deleted"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestListByThread_ExcludesDeletedOldestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(postColumns).
		AddRow(int64(1), "a", int64(1), int64(9), nil, now, now, false).
		AddRow(int64(2), "b", int64(1), int64(9), int64(1), now, now, false)
	mock.ExpectQuery(`(?s)WHERE thread_id = \$1 AND NOT is_deleted\s+ORDER BY created_at ASC, id ASC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(9), 100, 0).
		WillReturnRows(rows)

	got, err := repo.ListByThread(context.Background(), 9, 100, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, int64(1), *got[1].ParentID)
}

func TestSearch_SubstringQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)NOT is_deleted AND strpos\(lower\(content\), lower\(\$1\)\) > 0`).
		WithArgs("goroutine", 20, 0).
		WillReturnRows(sqlmock.NewRows(postColumns))

	got, err := repo.Search(context.Background(), "goroutine", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGet_DeletedIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM posts WHERE id = \$1 AND NOT is_deleted`).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestOwner_IncludesDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT user_id FROM posts WHERE id = \$1$`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(7)))
	mock.ExpectQuery(`^SELECT user_id FROM posts WHERE id = \$1$`).
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)

	owner, err := repo.Owner(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), owner)

	_, err = repo.Owner(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_SoftDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	deleted := true
	mock.ExpectQuery(`(?s)UPDATE posts SET.*is_deleted = COALESCE\(\$3, is_deleted\)`).
		WithArgs(int64(3), nil, true).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(int64(3), "a", int64(1), int64(9), nil, now, now, true))

	p, err := repo.Update(context.Background(), 3, models.PostUpdate{IsDeleted: &deleted})
	require.NoError(t, err)
	assert.True(t, p.IsDeleted)
}

func TestCountByUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM posts WHERE user_id`).WillReturnError(errors.New("down"))

	_, err := repo.CountByUser(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: down")
}
