package repositories

import (
	"sort"
	"strings"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db  *badger.DB
	seq *sequence
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB, seq *sequence) *BadgerUserRepository {
	return &BadgerUserRepository{db: db, seq: seq}
}

func usernameKey(username string) []byte {
	return []byte(usernameIndexPrefix + strings.ToLower(username))
}

// Create stores a new user. Usernames are unique, case-insensitively.
func (r *BadgerUserRepository) Create(user *models.User) error {
	id, err := r.seq.next()
	if err != nil {
		return err
	}
	err = update(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, usernameKey(user.Username))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		user.ID = id
		if err := setEntity(txn, entityKey(UserKeyPrefix, id), user); err != nil {
			return err
		}
		return setIndex(txn, usernameKey(user.Username), id)
	})
	if err != nil {
		user.ID = 0
	}
	return err
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user through the username index
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, usernameKey(username))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by ID
func (r *BadgerUserRepository) List() ([]*models.User, error) {
	var users []*models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(UserKeyPrefix), func(val []byte) error {
			var user models.User
			if err := unmarshalEntity(val, &user); err != nil {
				return err
			}
			users = append(users, &user)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Count returns the number of users
func (r *BadgerUserRepository) Count() (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(UserKeyPrefix))
		return nil
	})
	return n, err
}
