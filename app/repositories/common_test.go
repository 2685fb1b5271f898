package repositories

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSequence(t *testing.T) {
	db := setupTestStore(t).DB

	posts, err := newSequence(db, "seq:widgets", "widget:")
	require.NoError(t, err)

	t.Run("ids start at one and increase", func(t *testing.T) {
		for want := 1; want <= 5; want++ {
			id, err := posts.next()
			require.NoError(t, err)
			assert.Equal(t, want, id)
		}
	})

	t.Run("different sequence keys", func(t *testing.T) {
		other, err := newSequence(db, "seq:gadgets", "gadget:")
		require.NoError(t, err)
		id, err := other.next()
		require.NoError(t, err)
		assert.Equal(t, 1, id, "a new sequence should start from 1")
		require.NoError(t, other.release())
	})

	t.Run("release and reacquire continues", func(t *testing.T) {
		require.NoError(t, posts.release())
		_, err := posts.next()
		assert.Error(t, err)

		require.NoError(t, posts.acquire())
		id, err := posts.next()
		require.NoError(t, err)
		assert.Equal(t, 6, id)
	})

	t.Run("reseed skips stored ids", func(t *testing.T) {
		require.NoError(t, db.Update(func(txn *badger.Txn) error {
			return txn.Set(entityKey("widget:", 40), []byte("{}"))
		}))
		require.NoError(t, posts.release())
		require.NoError(t, posts.reseed())
		require.NoError(t, posts.acquire())

		id, err := posts.next()
		require.NoError(t, err)
		assert.Equal(t, 41, id)
	})
}

func TestSequencePersistsAcrossReopen(t *testing.T) {
	path := t.TempDir()

	store, err := Open(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Groups.Create(&models.Group{Title: "g", Slug: fmt.Sprintf("g%d", i)}))
	}
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	g := &models.Group{Title: "next", Slug: "next"}
	require.NoError(t, store.Groups.Create(g))
	assert.Equal(t, 4, g.ID)
}

func TestConcurrentCreates(t *testing.T) {
	store := setupTestStore(t)
	const writers = 50

	t.Run("comments", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- store.Comments.Create(&models.Comment{PostID: 1 + i%3, AuthorID: 1, Text: "hi", Created: time.Now()})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		comments, err := store.Comments.List()
		require.NoError(t, err)
		require.Len(t, comments, writers)
		seen := make(map[int]bool)
		for _, c := range comments {
			assert.False(t, seen[c.ID], "id %d handed out twice", c.ID)
			seen[c.ID] = true
		}
	})

	t.Run("users with distinct names", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- store.Users.Create(&models.User{Username: fmt.Sprintf("user%d", i)})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		n, err := store.Users.Count()
		require.NoError(t, err)
		assert.Equal(t, writers, n)
	})

	t.Run("same slug wins once", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.Groups.Create(&models.Group{Title: "race", Slug: "race"})
			}()
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, ErrDuplicate)
		}
		assert.Equal(t, 1, created)
	})
}

func TestMarshalEntity(t *testing.T) {
	t.Run("relations are not persisted", func(t *testing.T) {
		post := &models.Post{
			ID:       1,
			Text:     "Test Content",
			AuthorID: 2,
			Author:   &models.User{ID: 2, Username: "zzuser"},
		}

		data, err := marshalEntity(post)
		assert.NoError(t, err)
		assert.NotContains(t, string(data), "zzuser")

		var unmarshaled models.Post
		assert.NoError(t, unmarshalEntity(data, &unmarshaled))
		assert.Equal(t, post.Text, unmarshaled.Text)
		assert.Equal(t, 2, unmarshaled.AuthorID)
		assert.Nil(t, unmarshaled.Author)
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		invalidEntity := struct {
			Ch chan int
		}{
			Ch: make(chan int),
		}

		_, err := marshalEntity(invalidEntity)
		assert.Error(t, err)
	})
}

func TestUnmarshalEntity(t *testing.T) {
	t.Run("unmarshal comment", func(t *testing.T) {
		data := []byte(`{"id":1,"post_id":2,"author_id":3,"text":"Test Content"}`)
		var comment models.Comment
		err := unmarshalEntity(data, &comment)
		assert.NoError(t, err)
		assert.Equal(t, 1, comment.ID)
		assert.Equal(t, 2, comment.PostID)
		assert.Equal(t, 3, comment.AuthorID)
		assert.Equal(t, "Test Content", comment.Text)
	})

	t.Run("unmarshal invalid JSON", func(t *testing.T) {
		data := []byte(`{"id":1,invalid json}`)
		var post models.Post
		assert.Error(t, unmarshalEntity(data, &post))
	})

	t.Run("unmarshal into nil", func(t *testing.T) {
		assert.Error(t, unmarshalEntity([]byte(`{"id":1}`), nil))
	})
}
