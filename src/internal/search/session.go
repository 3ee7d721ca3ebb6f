package search

import (
	"context"
	"errors"
	"sync"

	"bookjournal/src/internal/schema"
)

// ErrSuperseded is delivered to a search whose result arrived after a newer
// search was started on the same Session.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Outcome is what a Perform call eventually delivers.
type Outcome struct {
	Generation uint64
	Result     schema.Result
	Err        error
}

// Session is the caller-facing side of the searcher: it hands out futures,
// tracks whether a search is running, and keeps the latest result. Only the
// newest search may replace the latest result or end the running state.
type Session struct {
	searcher *Searcher

	mu          sync.Mutex
	gen         uint64
	searching   bool
	hasSearched bool
	latest      schema.Result
	onStatus    func(searching bool)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStatusHook registers fn to be called on every running-state change.
// fn runs with the session lock held and must not call back into the Session.
func WithStatusHook(fn func(searching bool)) SessionOption {
	return func(s *Session) { s.onStatus = fn }
}

// NewSession wraps searcher.
func NewSession(searcher *Searcher, opts ...SessionOption) *Session {
	s := &Session{searcher: searcher}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Perform starts a search and returns a channel that receives exactly one
// Outcome and is then closed. Invalid queries are answered immediately
// without touching the running state.
func (s *Session) Perform(ctx context.Context, query string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	q, err := schema.ParseQuery(query)
	if err != nil {
		ch <- Outcome{Err: err}
		close(ch)
		return ch
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.hasSearched = true
	s.setSearching(true)
	s.mu.Unlock()

	go func() {
		defer close(ch)
		res, err := s.searcher.Search(ctx, q)

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			ch <- Outcome{Generation: gen, Result: schema.Result{Query: q}, Err: ErrSuperseded}
			return
		}
		if err != nil {
			res = schema.Result{Query: q}
		}
		s.latest = res
		s.setSearching(false)
		s.mu.Unlock()

		ch <- Outcome{Generation: gen, Result: res, Err: err}
	}()
	return ch
}

// setSearching must be called with mu held.
func (s *Session) setSearching(v bool) {
	if s.searching == v {
		return
	}
	s.searching = v
	if s.onStatus != nil {
		s.onStatus(v)
	}
}

// InProgress reports whether the newest search is still running.
func (s *Session) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// HasSearched reports whether any valid query was ever performed.
func (s *Session) HasSearched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasSearched
}

// Latest returns the result of the newest completed search.
func (s *Session) Latest() schema.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
