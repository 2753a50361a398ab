package repository

import (
	"context"
	"errors"
	"testing"

	"verseflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_ToggleLike_On(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "likes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "posts" SET "likes_count"=likes_count \+ 1 WHERE id = \$1`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT "likes_count" FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(5))

	result, err := repo.ToggleLike(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, int64(5), result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleLike_Off(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM likes WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "posts" SET "likes_count"=likes_count - 1 WHERE id = \$1 AND likes_count > 0`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT "likes_count" FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(4))

	result, err := repo.ToggleLike(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Equal(t, int64(4), result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleLike_PostMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	result, err := repo.ToggleLike(context.Background(), 5, 404)
	assert.Nil(t, result)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleLike_ConcurrentInsertResolvesOn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// Another request inserted the row between our check and insert. The
	// duplicate aborts the transaction, so membership is re-read after the
	// rollback and the toggle resolves as already-on without touching the
	// counter again.
	mock.ExpectQuery(`INSERT INTO "likes"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_like_user_post" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "likes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT "likes_count" FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(5))

	result, err := repo.ToggleLike(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, int64(5), result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleLike_SerializationFailureIsRetryable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnError(errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"))
	mock.ExpectRollback()

	result, err := repo.ToggleLike(context.Background(), 5, 9)
	assert.Nil(t, result)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeRetryable, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ToggleSave_On(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "saves" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs(5, 9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "saves"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Saves have no denormalized counter; the count comes from membership rows.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "saves" WHERE post_id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	result, err := repo.ToggleSave(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Equal(t, int64(3), result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepository_ReconcileCounters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)

	mock.ExpectExec(`UPDATE posts SET likes_count = \(`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE posts SET comments_count = \(`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repaired, err := repo.ReconcileCounters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), repaired["likes_count"])
	assert.Equal(t, int64(0), repaired["comments_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
