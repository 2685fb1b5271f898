package repositories

import (
	"sort"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db  *badger.DB
	seq *sequence
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB, seq *sequence) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db, seq: seq}
}

func slugKey(slug string) []byte {
	return []byte(slugIndexPrefix + slug)
}

// Create stores a new group. Slugs are unique.
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	id, err := r.seq.next()
	if err != nil {
		return err
	}
	err = update(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, slugKey(group.Slug))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		group.ID = id
		if err := setEntity(txn, entityKey(GroupKeyPrefix, id), group); err != nil {
			return err
		}
		return setIndex(txn, slugKey(group.Slug), id)
	})
	if err != nil {
		group.ID = 0
	}
	return err
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group through the slug index
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, slugKey(slug))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns all groups ordered by title
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(GroupKeyPrefix), func(val []byte) error {
			var group models.Group
			if err := unmarshalEntity(val, &group); err != nil {
				return err
			}
			groups = append(groups, &group)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Title == groups[j].Title {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].Title < groups[j].Title
	})
	return groups, nil
}

// Update saves an existing group and moves its slug index entry when the
// slug changed.
func (r *BadgerGroupRepository) Update(group *models.Group) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Group
		if err := getEntity(txn, entityKey(GroupKeyPrefix, group.ID), &existing); err != nil {
			return err
		}

		if existing.Slug != group.Slug {
			taken, err := exists(txn, slugKey(group.Slug))
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicate
			}
			if err := txn.Delete(slugKey(existing.Slug)); err != nil {
				return err
			}
			if err := setIndex(txn, slugKey(group.Slug), group.ID); err != nil {
				return err
			}
		}
		return setEntity(txn, entityKey(GroupKeyPrefix, group.ID), group)
	})
}

// Delete removes a group and its slug index entry
func (r *BadgerGroupRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Group
		if err := getEntity(txn, entityKey(GroupKeyPrefix, id), &existing); err != nil {
			return err
		}
		if err := txn.Delete(slugKey(existing.Slug)); err != nil {
			return err
		}
		return txn.Delete(entityKey(GroupKeyPrefix, id))
	})
}

// Count returns the number of groups
func (r *BadgerGroupRepository) Count() (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(GroupKeyPrefix))
		return nil
	})
	return n, err
}
