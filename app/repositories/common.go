package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	GroupKeyPrefix   = "group:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Secondary indexes
	usernameIndexPrefix = "idx:user:username:"
	slugIndexPrefix     = "idx:group:slug:"
	commentIndexPrefix  = "idx:comment:"

	// Sequence keys for auto-incrementing IDs, managed by badger.Sequence
	UserSeqKey    = "seq:user"
	GroupSeqKey   = "seq:group"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

// seqBandwidth is how many ids a sequence leases from disk at a time.
const seqBandwidth = 100

// maxConflictRetries bounds how often a write is retried after another
// transaction committed over the keys it read.
const maxConflictRetries = 10

// sequence hands out ids from a badger.Sequence. The Store releases and
// reacquires it around operations that rewrite the whole keyspace.
type sequence struct {
	db  *badger.DB
	key []byte
	// idPrefix is where the ids handed out end up, used by reseed.
	idPrefix []byte

	mu  sync.Mutex
	seq *badger.Sequence
}

func newSequence(db *badger.DB, key, idPrefix string) (*sequence, error) {
	s := &sequence{db: db, key: []byte(key), idPrefix: []byte(idPrefix)}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sequence) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, err := s.db.GetSequence(s.key, seqBandwidth)
	if err != nil {
		return fmt.Errorf("failed to get sequence %s: %w", s.key, err)
	}
	s.seq = seq
	return nil
}

// next returns the next id. Ids start at 1.
func (s *sequence) next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == nil {
		return 0, fmt.Errorf("sequence %s is released", s.key)
	}
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	}
	return int(n) + 1, nil
}

// release gives back the unused part of the lease.
func (s *sequence) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == nil {
		return nil
	}
	err := s.seq.Release()
	s.seq = nil
	return err
}

// reseed moves a released sequence past every id stored under idPrefix.
// Loaded backups keep their original versions, so the stored lease may
// be older than one written since; the ids themselves are the truth.
func (s *sequence) reseed() error {
	return update(s.db, func(txn *badger.Txn) error {
		next := uint64(maxStoredID(txn, s.idPrefix))
		item, err := txn.Get(s.key)
		switch {
		case err == nil:
			err = item.Value(func(val []byte) error {
				if len(val) == 8 && binary.BigEndian.Uint64(val) > next {
					next = binary.BigEndian.Uint64(val)
				}
				return nil
			})
			if err != nil {
				return err
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], next)
		return txn.Set(s.key, buf[:])
	})
}

// maxStoredID returns the largest numeric key suffix under prefix.
func maxStoredID(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	max := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		id, err := strconv.Atoi(string(it.Item().Key()[len(prefix):]))
		if err == nil && id > max {
			max = id
		}
	}
	return max
}

// update runs fn in a read-write transaction, retrying when badger
// reports a conflict with a concurrent writer.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func entityKey(prefix string, id int) []byte {
	return []byte(prefix + strconv.Itoa(id))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads the value stored at key into entity.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity stores entity at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// getIndex resolves a secondary index entry to the id it points at.
func getIndex(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}

func setIndex(txn *badger.Txn, key []byte, id int) error {
	return txn.Set(key, []byte(strconv.Itoa(id)))
}

// scanPrefix decodes every value under prefix with decode.
func scanPrefix(txn *badger.Txn, prefix []byte, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

// countPrefix counts keys under prefix without reading values.
func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}
