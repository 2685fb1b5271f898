package repositories

import (
	"fmt"
	"sort"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments are keyed comment:<postID>:<id> so a post's comments share a
// prefix; idx:comment:<id> maps a comment back to its post.
type BadgerCommentRepository struct {
	db  *badger.DB
	seq *sequence
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB, seq *sequence) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db, seq: seq}
}

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", CommentKeyPrefix, postID, id))
}

func postCommentsPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%d:", CommentKeyPrefix, postID))
}

// locate finds the primary key of a comment through the id index.
func locate(txn *badger.Txn, id int) ([]byte, error) {
	postID, err := getIndex(txn, entityKey(commentIndexPrefix, id))
	if err != nil {
		return nil, err
	}
	return commentKey(postID, id), nil
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	id, err := r.seq.next()
	if err != nil {
		return err
	}
	comment.ID = id
	return update(r.db, func(txn *badger.Txn) error {
		if err := setEntity(txn, commentKey(comment.PostID, comment.ID), comment); err != nil {
			return err
		}
		return setIndex(txn, entityKey(commentIndexPrefix, comment.ID), comment.PostID)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := locate(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, key, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *BadgerCommentRepository) scan(prefix []byte) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefix, func(val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return err
			}
			comments = append(comments, &comment)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].Created.Equal(comments[j].Created) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].Created.Before(comments[j].Created)
	})
	return comments, nil
}

// ListByPost retrieves all comments for a post, oldest first
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.scan(postCommentsPrefix(postID))
}

// List retrieves every comment, oldest first
func (r *BadgerCommentRepository) List() ([]*models.Comment, error) {
	return r.scan([]byte(CommentKeyPrefix))
}

// Count returns the number of comments
func (r *BadgerCommentRepository) Count() (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(CommentKeyPrefix))
		return nil
	})
	return n, err
}

// CountByPost returns the number of comments on a post
func (r *BadgerCommentRepository) CountByPost(postID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, postCommentsPrefix(postID))
		return nil
	})
	return n, err
}

// Latest returns the most recently created comment
func (r *BadgerCommentRepository) Latest() (*models.Comment, error) {
	comments, err := r.List()
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return comments[len(comments)-1], nil
}

// Update updates an existing comment. The parent post cannot change.
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := locate(txn, comment.ID)
		if err != nil {
			return err
		}
		if string(key) != string(commentKey(comment.PostID, comment.ID)) {
			return fmt.Errorf("comment %d belongs to another post", comment.ID)
		}
		return setEntity(txn, key, comment)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := locate(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(entityKey(commentIndexPrefix, id))
	})
}
