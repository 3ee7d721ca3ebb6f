package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bookjournal/src/internal/dates"
	"bookjournal/src/internal/httpx"
	"bookjournal/src/internal/sanitize"
	"bookjournal/src/internal/schema"
)

// Provider names accepted by New.
const (
	ProviderRakuten = "rakuten"
	ProviderGoogle  = "google"
)

var (
	// ErrCatalog matches every *Error via errors.Is.
	ErrCatalog = errors.New("catalog error")
	// ErrNotFound is returned by Lookup when no record carries the id.
	ErrNotFound = errors.New("catalog: book not found")
)

// Client issues a single query against a book catalog.
type Client interface {
	Search(ctx context.Context, query string) ([]schema.RawBook, error)
}

// Resolver fetches one record by its provider id.
type Resolver interface {
	Lookup(ctx context.Context, id string) (schema.RawBook, error)
}

// Kind classifies a provider failure.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindStatus
	KindRateLimit
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindRateLimit:
		return "rate_limit"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// Error is the failure of one provider call.
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (http %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrCatalog }

// statusError maps a non-200 response to an *Error, reading a body snippet.
func statusError(provider string, resp *http.Response) *Error {
	kind := KindStatus
	if resp.StatusCode == http.StatusTooManyRequests {
		kind = KindRateLimit
	}
	return &Error{Provider: provider, Kind: kind, Status: resp.StatusCode, Err: errors.New(httpx.Snippet(resp))}
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	BaseURL  string
	AppID    string
	APIKey   string
	Hits     int
	Timeout  time.Duration
}

// New builds the configured provider. A nil doer gets an *http.Client with
// opts.Timeout.
func New(opts Options, doer httpx.Doer) (Client, error) {
	if doer == nil {
		doer = httpx.NewClient(opts.Timeout)
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderRakuten:
		if strings.TrimSpace(opts.AppID) == "" {
			return nil, errors.New("rakuten: application id is required (set RAKUTEN_APP_ID)")
		}
		return NewRakuten(opts.AppID, opts.BaseURL, opts.Hits, doer), nil
	case ProviderGoogle:
		return NewGoogle(opts.APIKey, opts.BaseURL, opts.Hits, doer), nil
	default:
		return nil, fmt.Errorf("unknown catalog provider: %s", opts.Provider)
	}
}

// Lookup resolves a single book by id. Providers implementing Resolver are
// asked directly; otherwise the id is searched and matched.
func Lookup(ctx context.Context, c Client, id string) (schema.RawBook, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schema.RawBook{}, ErrNotFound
	}
	if r, ok := c.(Resolver); ok {
		return r.Lookup(ctx, id)
	}
	raws, err := c.Search(ctx, id)
	if err != nil {
		return schema.RawBook{}, err
	}
	for _, r := range raws {
		if r.ID == id {
			return r, nil
		}
	}
	return schema.RawBook{}, ErrNotFound
}

// NewBook normalizes a raw provider record into a Book.
func NewBook(r schema.RawBook) schema.Book {
	b := schema.Book{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Publisher:   r.PublisherName,
		Description: r.Description,
		PublishDate: dates.ParsePublishDate(r.PublishDate),
		ImageURL:    r.ImageURL,
		ISBN:        r.ISBN,
		Source:      r.Source,
	}
	sanitize.CleanBook(&b)
	return b
}

// isISBN reports whether q is a bare ISBN-10 or ISBN-13 (hyphens allowed).
func isISBN(q string) (string, bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(q), "-", ""))
	if len(s) != 10 && len(s) != 13 {
		return "", false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == 'X' && len(s) == 10 && i == 9 {
			continue
		}
		return "", false
	}
	return s, true
}
