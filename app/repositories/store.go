package repositories

import (
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store owns the Badger database shared by all repositories.
type Store struct {
	DB       *badger.DB
	dbPath   string
	isTestDB bool

	Users    *BadgerUserRepository
	Groups   *BadgerGroupRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository

	seqs []*sequence
}

// Open opens the database at path. An empty path opens an in-memory
// database, which is what tests use.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	isTest := false
	if path == "" {
		opts = opts.WithInMemory(true)
		isTest = true
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	store, err := newStore(db, path, isTest)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenTemp opens a database in a fresh temporary directory that is removed
// on Close.
func OpenTemp() (*Store, error) {
	tempPath, err := os.MkdirTemp("", "yatube_test_db_")
	if err != nil {
		return nil, fmt.Errorf("error creating temp dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(tempPath).WithLogger(nil).WithSyncWrites(false))
	if err != nil {
		os.RemoveAll(tempPath)
		return nil, err
	}
	store, err := newStore(db, tempPath, true)
	if err != nil {
		db.Close()
		os.RemoveAll(tempPath)
		return nil, err
	}
	return store, nil
}

// NewStore wraps an already open database.
func NewStore(db *badger.DB) (*Store, error) {
	return newStore(db, "", false)
}

func newStore(db *badger.DB, path string, isTest bool) (*Store, error) {
	s := &Store{DB: db, dbPath: path, isTestDB: isTest}
	seqs := []struct{ key, idPrefix string }{
		{UserSeqKey, UserKeyPrefix},
		{GroupSeqKey, GroupKeyPrefix},
		{PostSeqKey, PostKeyPrefix},
		{CommentSeqKey, commentIndexPrefix},
	}
	for _, sc := range seqs {
		sq, err := newSequence(db, sc.key, sc.idPrefix)
		if err != nil {
			s.releaseSequences()
			return nil, err
		}
		s.seqs = append(s.seqs, sq)
	}
	s.Users = NewBadgerUserRepository(db, s.seqs[0])
	s.Groups = NewBadgerGroupRepository(db, s.seqs[1])
	s.Posts = NewBadgerPostRepository(db, s.seqs[2])
	s.Comments = NewBadgerCommentRepository(db, s.seqs[3])
	return s, nil
}

// releaseSequences writes back unused leases so ids stay dense across
// restarts.
func (s *Store) releaseSequences() error {
	var first error
	for _, sq := range s.seqs {
		if err := sq.release(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Store) acquireSequences() error {
	for _, sq := range s.seqs {
		if err := sq.acquire(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database and removes temporary test data.
func (s *Store) Close() error {
	if err := s.releaseSequences(); err != nil {
		s.DB.Close()
		return fmt.Errorf("release sequences: %w", err)
	}
	if err := s.DB.Close(); err != nil {
		return err
	}
	if s.isTestDB && s.dbPath != "" {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every key, sequences included.
func (s *Store) Clear() error {
	if err := s.releaseSequences(); err != nil {
		return err
	}
	if err := s.DB.DropAll(); err != nil {
		return err
	}
	return s.acquireSequences()
}

// Backup writes a full backup to w.
func (s *Store) Backup(w io.Writer) error {
	_, err := s.DB.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup. Sequences are reacquired
// afterwards so new ids continue after the restored ones.
func (s *Store) Restore(r io.Reader) error {
	if err := s.releaseSequences(); err != nil {
		return err
	}
	loadErr := s.load(r)
	for _, sq := range s.seqs {
		if err := sq.reseed(); err != nil {
			return err
		}
	}
	if err := s.acquireSequences(); err != nil {
		return err
	}
	return loadErr
}

func (s *Store) load(r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	return s.DB.Load(r, 4)
}
