package repository

import (
	"context"
	"testing"

	"verseflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListOrdered(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "content", "kind", "likes_count", "comments_count"}).
		AddRow(2, 5, "the orchard in november", models.PostKindPoetry, 4, 1).
		AddRow(7, nil, "what the river keeps", models.PostKindProse, 0, 0)
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE "posts"\."deleted_at" IS NULL ORDER BY RANDOM\(\) LIMIT \$1`).
		WithArgs(21).
		WillReturnRows(rows)

	// Preload("User") collects the non-null author IDs into one query.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "handle"}).AddRow(5, "novalis"))

	posts, err := repo.ListOrdered(context.Background(), "RANDOM()", 21, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(2), posts[0].ID)
	assert.Equal(t, 4, posts[0].LikesCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetLikedPostIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	t.Run("returns liked subset", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"post_id"}).AddRow(2).AddRow(9)
		mock.ExpectQuery(`SELECT "post_id" FROM "likes" WHERE user_id = \$1 AND post_id IN \(\$2,\$3,\$4\)`).
			WithArgs(5, 2, 7, 9).
			WillReturnRows(rows)

		ids, err := repo.GetLikedPostIDs(context.Background(), 5, []uint{2, 7, 9})
		require.NoError(t, err)
		assert.Equal(t, []uint{2, 9}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page short-circuits", func(t *testing.T) {
		ids, err := repo.GetLikedPostIDs(context.Background(), 5, nil)
		assert.NoError(t, err)
		assert.Nil(t, ids)
	})
}

func TestPostRepository_GetSavedPostIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"post_id"}).AddRow(7)
	mock.ExpectQuery(`SELECT "post_id" FROM "saves" WHERE user_id = \$1 AND post_id IN \(\$2,\$3\)`).
		WithArgs(5, 2, 7).
		WillReturnRows(rows)

	ids, err := repo.GetSavedPostIDs(context.Background(), 5, []uint{2, 7})
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListSavedByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "content"}).
		AddRow(7, 3, "what the river keeps")
	mock.ExpectQuery(`FROM "posts" JOIN saves ON saves\.post_id = posts\.id WHERE saves\.user_id = \$1 AND "posts"\."deleted_at" IS NULL ORDER BY saves\.created_at DESC LIMIT \$2`).
		WithArgs(5, 20).
		WillReturnRows(rows)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "handle"}).AddRow(3, "mira"))

	posts, err := repo.ListSavedByUser(context.Background(), 5, 20, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, uint(7), posts[0].ID)
}

func TestPostRepository_CountByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE user_id = \$1 AND "posts"\."deleted_at" IS NULL`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
