// Package journal persists reading notes and the books they refer to in a
// single bbolt file. Values are JSON documents keyed by id.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"bookjournal/src/internal/sanitize"
	"bookjournal/src/internal/schema"
)

var (
	entriesBucket = []byte("entries")
	booksBucket   = []byte("books")
)

var (
	// ErrNotFound is returned when an id has no record.
	ErrNotFound = errors.New("journal: not found")
	// ErrInvalidEntry wraps every entry validation failure.
	ErrInvalidEntry = errors.New("journal: invalid entry")
	// ErrInUse is returned when another process holds the journal file.
	ErrInUse = errors.New("journal is in use")
)

var errClosed = errors.New("journal: store is closed")

// DefaultPath is used when no db path is configured.
const DefaultPath = "data/journal.db"

// LockTimeout bounds how long Open waits for the file lock.
var LockTimeout = time.Second

// Journal is a point-in-time copy of everything stored.
type Journal struct {
	Books   []schema.Book         `yaml:"books" json:"books"`
	Entries []schema.JournalEntry `yaml:"entries" json:"entries"`
}

// Store is safe for concurrent use.
type Store struct {
	path string
	db   *bolt.DB
	mu   sync.RWMutex
}

// Open creates the parent directory and both buckets when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: LockTimeout})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("open journal %s: %w", path, ErrInUse)
	}
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{entriesBucket, booksBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal buckets: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Close releases the file lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// AddEntry validates and upserts e, and saves book if it is not stored yet.
// A book with an empty id is not saved; e.BookID must still be set.
func (s *Store) AddEntry(e schema.JournalEntry, book schema.Book) (schema.JournalEntry, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = schema.NewEntryID()
	}
	if e.Status == "" {
		e.Status = schema.StatusCompleted
	}
	sanitize.CleanEntry(&e)
	if err := e.Validate(); err != nil {
		return schema.JournalEntry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	sanitize.CleanBook(&book)

	err := s.update(func(tx *bolt.Tx) error {
		if book.ID != "" {
			books := tx.Bucket(booksBucket)
			if books.Get([]byte(book.ID)) == nil {
				if err := putJSON(books, book.ID, book); err != nil {
					return err
				}
			}
		}
		return putJSON(tx.Bucket(entriesBucket), e.ID, e)
	})
	if err != nil {
		return schema.JournalEntry{}, err
	}
	return e, nil
}

// SaveBook stores b, replacing any previous copy.
func (s *Store) SaveBook(b schema.Book) error {
	sanitize.CleanBook(&b)
	if b.ID == "" {
		return errors.New("book id is required")
	}
	return s.update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(booksBucket), b.ID, b)
	})
}

// RemoveEntry deletes the entry with id.
func (s *Store) RemoveEntry(id string) error {
	return s.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("entry %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// Entry returns a single entry.
func (s *Store) Entry(id string) (schema.JournalEntry, error) {
	var e schema.JournalEntry
	err := s.view(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(entriesBucket), id, &e)
	})
	return e, err
}

// Entries returns every entry, oldest first.
func (s *Store) Entries() ([]schema.JournalEntry, error) {
	return s.entries(func(schema.JournalEntry) bool { return true })
}

// EntriesForBook returns the entries written about bookID, oldest first.
func (s *Store) EntriesForBook(bookID string) ([]schema.JournalEntry, error) {
	return s.entries(func(e schema.JournalEntry) bool { return e.BookID == bookID })
}

func (s *Store) entries(keep func(schema.JournalEntry) bool) ([]schema.JournalEntry, error) {
	out := []schema.JournalEntry{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(k, v []byte) error {
			var e schema.JournalEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode entry %s: %w", k, err)
			}
			if keep(e) {
				out = append(out, e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Book returns a saved book.
func (s *Store) Book(id string) (schema.Book, error) {
	var b schema.Book
	err := s.view(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(booksBucket), id, &b)
	})
	return b, err
}

// Books returns every saved book ordered by title, then id.
func (s *Store) Books() ([]schema.Book, error) {
	out := []schema.Book{}
	err := s.view(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).ForEach(func(k, v []byte) error {
			var b schema.Book
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("decode book %s: %w", k, err)
			}
			out = append(out, b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Export snapshots both collections.
func (s *Store) Export() (Journal, error) {
	books, err := s.Books()
	if err != nil {
		return Journal{}, err
	}
	entries, err := s.Entries()
	if err != nil {
		return Journal{}, err
	}
	return Journal{Books: books, Entries: entries}, nil
}

// WriteYAML encodes j as a YAML document.
func WriteYAML(w io.Writer, j Journal) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(j); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Store) view(fn func(tx *bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return errClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return errClosed
	}
	return s.db.Update(fn)
}

func putJSON(b *bolt.Bucket, key string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), buf)
}

func getJSON(b *bolt.Bucket, key string, v any) error {
	raw := b.Get([]byte(key))
	if raw == nil {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return json.Unmarshal(raw, v)
}
