package repositories

import (
	"testing"
	"time"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository(t *testing.T) {
	repo := setupTestStore(t).Posts
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and get post", func(t *testing.T) {
		post := &models.Post{Text: "Тестовый текст", AuthorID: 1, GroupID: 2, Image: "posts/a.gif", PubDate: base}

		require.NoError(t, repo.Create(post))
		assert.Greater(t, post.ID, 0)

		retrieved, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Text, retrieved.Text)
		assert.Equal(t, 1, retrieved.AuthorID)
		assert.Equal(t, 2, retrieved.GroupID)
		assert.Equal(t, "posts/a.gif", retrieved.Image)
		assert.True(t, base.Equal(retrieved.PubDate))
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := repo.GetByID(999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update post", func(t *testing.T) {
		post := &models.Post{Text: "Original", AuthorID: 1, PubDate: base.Add(time.Minute)}
		require.NoError(t, repo.Create(post))

		post.Text = "Updated"
		require.NoError(t, repo.Update(post))

		updated, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated", updated.Text)

		assert.ErrorIs(t, repo.Update(&models.Post{ID: 999, Text: "x"}), ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		post := &models.Post{Text: "Doomed", AuthorID: 1, PubDate: base}
		require.NoError(t, repo.Create(post))

		require.NoError(t, repo.Delete(post.ID))
		_, err := repo.GetByID(post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(post.ID), ErrNotFound)
	})
}

func TestPostRepositoryFind(t *testing.T) {
	repo := setupTestStore(t).Posts
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Twelve posts: authors alternate 1/2, the first four are in group 7.
	for i := 0; i < 12; i++ {
		post := &models.Post{
			Text:     "post",
			AuthorID: 1 + i%2,
			PubDate:  base.Add(time.Duration(i) * time.Hour),
		}
		if i < 4 {
			post.GroupID = 7
		}
		require.NoError(t, repo.Create(post))
	}

	t.Run("newest first", func(t *testing.T) {
		posts, err := repo.Find(PostQuery{})
		require.NoError(t, err)
		require.Len(t, posts, 12)
		assert.Equal(t, 12, posts[0].ID)
		assert.Equal(t, 1, posts[11].ID)
	})

	t.Run("paging", func(t *testing.T) {
		first, err := repo.Find(PostQuery{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, first, 10)

		second, err := repo.Find(PostQuery{Limit: 10, Offset: 10})
		require.NoError(t, err)
		assert.Len(t, second, 2)

		none, err := repo.Find(PostQuery{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("filter by author and group", func(t *testing.T) {
		byAuthor, err := repo.Count(PostQuery{AuthorID: 2})
		require.NoError(t, err)
		assert.Equal(t, 6, byAuthor)

		byGroup, err := repo.Find(PostQuery{GroupID: 7})
		require.NoError(t, err)
		assert.Len(t, byGroup, 4)
		for _, p := range byGroup {
			assert.Equal(t, 7, p.GroupID)
		}

		total, err := repo.Count(PostQuery{})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
	})

	t.Run("latest", func(t *testing.T) {
		latest, err := repo.Latest()
		require.NoError(t, err)
		assert.Equal(t, 12, latest.ID)
	})
}
