package repositories

import (
	"testing"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository(t *testing.T) {
	repo := setupTestStore(t).Groups

	group := &models.Group{Title: "Тестовый заголовок", Slug: "test-slug", Description: "Тестовое описание"}
	require.NoError(t, repo.Create(group))
	assert.Equal(t, 1, group.ID)

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(&models.Group{Title: "Other", Slug: "test-slug"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get by slug", func(t *testing.T) {
		got, err := repo.GetBySlug("test-slug")
		require.NoError(t, err)
		assert.Equal(t, group.Title, got.Title)

		_, err = repo.GetBySlug("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update moves slug index", func(t *testing.T) {
		group.Slug = "renamed"
		require.NoError(t, repo.Update(group))

		_, err := repo.GetBySlug("test-slug")
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := repo.GetBySlug("renamed")
		require.NoError(t, err)
		assert.Equal(t, group.ID, got.ID)
	})

	t.Run("list and count", func(t *testing.T) {
		require.NoError(t, repo.Create(&models.Group{Title: "Alpha", Slug: "alpha"}))
		groups, err := repo.List()
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Alpha", groups[0].Title)

		n, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("delete frees slug", func(t *testing.T) {
		require.NoError(t, repo.Delete(group.ID))
		_, err := repo.GetByID(group.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, repo.Create(&models.Group{Title: "Again", Slug: "renamed"}))
	})
}

