package userbadges

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/devquest/codenexus/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ubColumns = []string{"user_id", "badge_id", "earned_at", "display_on_profile"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestInsert_Fresh(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT INTO user_badges .*ON CONFLICT \(user_id, badge_id\) DO NOTHING`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(ubColumns).AddRow(int64(1), int64(2), time.Now(), true))

	ub, created, err := repo.Insert(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, ub.DisplayOnProfile)
}

func TestInsert_ExistingReturnsStoredRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	earned := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`INSERT INTO user_badges`).WillReturnRows(sqlmock.NewRows(ubColumns))
	mock.ExpectQuery(`FROM user_badges\s+WHERE user_id = \$1 AND badge_id = \$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(ubColumns).AddRow(int64(1), int64(2), earned, false))

	ub, created, err := repo.Insert(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, ub.EarnedAt.Equal(earned))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDisplay_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE user_badges SET display_on_profile`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateDisplay(context.Background(), 1, 2, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByUser_JoinsBadge(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := append(append([]string{}, ubColumns...), "id", "name", "description", "icon", "color", "category",
		"level", "reputation_points", "criteria", "created_at")
	mock.ExpectQuery(`(?s)JOIN badges b ON b.id = ub.badge_id.*ORDER BY ub.display_on_profile DESC, b.level DESC`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), int64(2), time.Now(), true,
			int64(2), "First Post", "d", "MessageSquare", "#2196F3", "participation", 1, 5,
			[]byte(`{"type":"posts","threshold":1}`), time.Now()))

	got, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First Post", got[0].Badge.Name)
	assert.Equal(t, 1, got[0].Badge.Criteria.Threshold)
}
