package threads

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threadColumns = []string{"id", "title", "user_id", "category_id", "created_at", "updated_at",
	"view_count", "is_pinned", "is_closed"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func threadRow(rows *sqlmock.Rows, id int64, title string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, int64(1), int64(2), now, now, 0, false, false)
}

func TestList_BuildsFilterAndPagination(t *testing.T) {
	tests := []struct {
		name  string
		f     Filter
		query string
		args  []driver.Value
	}{
		{
			name:  "all newest first",
			query: `FROM threads ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2$`,
			args:  []driver.Value{2, 1},
		},
		{
			name:  "by category",
			f:     Filter{CategoryID: 3},
			query: `FROM threads WHERE category_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3$`,
			args:  []driver.Value{int64(3), 2, 1},
		},
		{
			name:  "user and search",
			f:     Filter{UserID: 5, Query: "WebSocket"},
			query: `WHERE user_id = \$1 AND strpos\(lower\(title\), lower\(\$2\)\) > 0 ORDER BY`,
			args:  []driver.Value{int64(5), "WebSocket", 2, 1},
		},
		{
			name:  "popular",
			f:     Filter{Popular: true},
			query: `ORDER BY view_count DESC, created_at DESC, id DESC LIMIT`,
			args:  []driver.Value{2, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			rows := threadRow(sqlmock.NewRows(threadColumns), 4, "t4")
			rows = threadRow(rows, 3, "t3")
			mock.ExpectQuery(tt.query).WithArgs(tt.args...).WillReturnRows(rows)

			got, err := repo.List(context.Background(), tt.f, 2, 1)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, int64(4), got[0].ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM threads WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_OnlySetFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	closed := true
	mock.ExpectQuery(`(?s)UPDATE threads SET.*is_closed = COALESCE\(\$5, is_closed\)`).
		WithArgs(int64(1), nil, nil, nil, true).
		WillReturnRows(threadRow(sqlmock.NewRows(threadColumns), 1, "t"))

	_, err := repo.Update(context.Background(), 1, models.ThreadUpdate{IsClosed: &closed})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViewCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE threads SET view_count = view_count \+ 1 WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.IncrementViewCount(context.Background(), 8))
}

func TestCountByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM threads WHERE user_id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountByUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
