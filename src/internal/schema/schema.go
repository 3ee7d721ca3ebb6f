package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidQuery is returned for empty or whitespace-only search text.
var ErrInvalidQuery = errors.New("invalid query: search text is empty")

// RawBook is a single catalog hit as returned by a provider, before filtering.
// Every field except ID may be empty.
type RawBook struct {
	ID            string
	Title         string
	Author        string
	PublisherName string
	Description   string
	ImageURL      string
	PublishDate   string
	ISBN          string
	Source        string
}

// Book is the normalized record handed to callers and stored in the journal.
type Book struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Author      string     `yaml:"author,omitempty" json:"author,omitempty"`
	Publisher   string     `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	PublishDate *time.Time `yaml:"publish_date,omitempty" json:"publish_date,omitempty"`
	ImageURL    string     `yaml:"image_url,omitempty" json:"image_url,omitempty"`
	ISBN        string     `yaml:"isbn,omitempty" json:"isbn,omitempty"`
	Source      string     `yaml:"source,omitempty" json:"source,omitempty"`
}

// Result is the outcome of one search: primary books first, then the
// related-keyword books, plus the keywords that were searched.
type Result struct {
	Query           string   `json:"query"`
	Books           []Book   `json:"books"`
	RelatedKeywords []string `json:"related_keywords"`
}

// ParseQuery trims s and rejects it when nothing is left.
func ParseQuery(s string) (string, error) {
	q := strings.TrimSpace(s)
	if q == "" {
		return "", ErrInvalidQuery
	}
	return q, nil
}

// ReadingStatus is where the reader is with a book.
type ReadingStatus string

const (
	StatusWantToRead ReadingStatus = "want_to_read"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
	StatusAbandoned  ReadingStatus = "abandoned"
)

var statusLabels = map[ReadingStatus]string{
	StatusWantToRead: "読みたい",
	StatusReading:    "読書中",
	StatusCompleted:  "読了",
	StatusAbandoned:  "中断",
}

// Statuses lists every reading status in display order.
func Statuses() []ReadingStatus {
	return []ReadingStatus{StatusWantToRead, StatusReading, StatusCompleted, StatusAbandoned}
}

// Label returns the Japanese display label.
func (s ReadingStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts either the identifier ("reading") or the label ("読書中").
func ParseStatus(v string) (ReadingStatus, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return StatusCompleted, nil
	}
	for s, label := range statusLabels {
		if strings.EqualFold(v, string(s)) || v == label {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown reading status: %s", v)
}

// JournalEntry is one personal reading note about a book.
type JournalEntry struct {
	ID      string        `yaml:"id" json:"id"`
	BookID  string        `yaml:"book_id" json:"book_id"`
	Date    time.Time     `yaml:"date" json:"date"`
	Content string        `yaml:"content" json:"content"`
	Rating  int           `yaml:"rating" json:"rating"`
	Tags    []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Quotes  []string      `yaml:"quotes,omitempty" json:"quotes,omitempty"`
	Status  ReadingStatus `yaml:"status" json:"status"`
}

// NewEntryID returns a fresh random entry id.
func NewEntryID() string { return uuid.NewString() }

// Validate applies the rules every stored entry must satisfy.
func (e *JournalEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("id is required")
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("id must be a uuid: %w", err)
	}
	if strings.TrimSpace(e.BookID) == "" {
		return errors.New("book_id is required")
	}
	if e.Rating < 1 || e.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", e.Rating)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("invalid status: %s", e.Status)
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}
