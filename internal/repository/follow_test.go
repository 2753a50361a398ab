package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Toggle_On(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "follows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	following, err := repo.Toggle(context.Background(), 5, 8)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Toggle_Off(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	following, err := repo.Toggle(context.Background(), 5, 8)
	require.NoError(t, err)
	assert.False(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Toggle_ConcurrentInsertResolvesOn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// The duplicate insert aborts the transaction; the edge is re-read after
	// the rollback and the toggle reports the now-following state.
	mock.ExpectQuery(`INSERT INTO "follows"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_follow_edge" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	following, err := repo.Toggle(context.Background(), 5, 8)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Counts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE following_id = \$1`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	followers, err := repo.FollowerCount(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(42), followers)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1`).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	following, err := repo.FollowingCount(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(7), following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_IsFollowing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND following_id = \$2`).
		WithArgs(5, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.IsFollowing(context.Background(), 5, 8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
