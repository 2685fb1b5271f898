package repositories

import (
	"sort"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	seq *sequence
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB, seq *sequence) *BadgerPostRepository {
	return &BadgerPostRepository{db: db, seq: seq}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	id, err := r.seq.next()
	if err != nil {
		return err
	}
	post.ID = id
	return update(r.db, func(txn *badger.Txn) error {
		return setEntity(txn, entityKey(PostKeyPrefix, post.ID), post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// all loads the posts matching q, newest first, without paging.
func (r *BadgerPostRepository) all(q PostQuery) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if q.AuthorID != 0 && post.AuthorID != q.AuthorID {
				return nil
			}
			if q.GroupID != 0 && post.GroupID != q.GroupID {
				return nil
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	SortPostsNewestFirst(posts)
	return posts, nil
}

// SortPostsNewestFirst orders posts by publication date, newest first.
func SortPostsNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].PubDate.Equal(posts[j].PubDate) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].PubDate.After(posts[j].PubDate)
	})
}

// Find returns the posts matching q, newest first
func (r *BadgerPostRepository) Find(q PostQuery) ([]*models.Post, error) {
	posts, err := r.all(q)
	if err != nil {
		return nil, err
	}
	return page(posts, q.Limit, q.Offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// Count returns the number of posts matching q, ignoring paging
func (r *BadgerPostRepository) Count(q PostQuery) (int, error) {
	if q.AuthorID == 0 && q.GroupID == 0 {
		var n int
		err := r.db.View(func(txn *badger.Txn) error {
			n = countPrefix(txn, []byte(PostKeyPrefix))
			return nil
		})
		return n, err
	}
	posts, err := r.all(q)
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

// Latest returns the most recently published post
func (r *BadgerPostRepository) Latest() (*models.Post, error) {
	posts, err := r.Find(PostQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return posts[0], nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, post.ID)

		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return setEntity(txn, key, post)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)

		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return txn.Delete(key)
	})
}
