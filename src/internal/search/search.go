// Package search runs the search-and-enrich pipeline: one primary catalog
// query, publisher filtering, related-keyword extraction, and a concurrent
// best-effort fan-out whose hits are merged behind the primary books.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"bookjournal/src/internal/catalog"
	"bookjournal/src/internal/schema"
)

// MaxRelated bounds the fan-out.
const MaxRelated = 5

// MatchMode controls how a related keyword is compared with the query.
type MatchMode string

const (
	// MatchFold compares after NFKC normalization and lower-casing.
	MatchFold MatchMode = "fold"
	// MatchExact compares the strings as-is.
	MatchExact MatchMode = "exact"
)

// Filter keeps the records worth showing.
type Filter interface {
	Apply(raws []schema.RawBook) []schema.Book
}

// Extractor derives candidate keywords from free text.
type Extractor interface {
	Extract(text string) []string
}

// Options tune a Searcher. Zero values mean defaults.
type Options struct {
	MaxRelated int
	Match      MatchMode
	Logger     *zap.Logger
}

// Searcher is stateless across calls and safe for concurrent use.
type Searcher struct {
	client     catalog.Client
	filter     Filter
	extractor  Extractor
	maxRelated int
	match      MatchMode
	log        *zap.Logger
}

// New wires a Searcher.
func New(client catalog.Client, filter Filter, extractor Extractor, opts Options) *Searcher {
	max := opts.MaxRelated
	if max <= 0 || max > MaxRelated {
		max = MaxRelated
	}
	match := opts.Match
	if match != MatchExact {
		match = MatchFold
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{client: client, filter: filter, extractor: extractor, maxRelated: max, match: match, log: log}
}

// Search runs the whole pipeline for one query. A failed primary call fails
// the search; failed related-keyword calls only shrink the result. If ctx
// is done by the time every branch has reported, nothing is merged and the
// context error is returned.
func (s *Searcher) Search(ctx context.Context, query string) (schema.Result, error) {
	q, err := schema.ParseQuery(query)
	if err != nil {
		return schema.Result{}, err
	}
	raws, err := s.client.Search(ctx, q)
	if err != nil {
		return schema.Result{Query: q}, fmt.Errorf("primary search %q: %w", q, err)
	}
	primary := uniqueBooks(s.filter.Apply(raws))
	related := s.RelatedKeywords(q, primary)
	s.log.Debug("primary search done",
		zap.String("query", q),
		zap.Int("raw", len(raws)),
		zap.Int("kept", len(primary)),
		zap.Strings("related", related))

	batches := s.fanOut(ctx, related)
	if err := ctx.Err(); err != nil {
		return schema.Result{Query: q}, err
	}
	books := merge(primary, batches)
	s.log.Debug("search complete", zap.String("query", q), zap.Int("books", len(books)))
	return schema.Result{Query: q, Books: books, RelatedKeywords: related}, nil
}

// RelatedKeywords unions the keywords of each book's title and description
// in book order, drops the query itself, and keeps at most the configured cap.
func (s *Searcher) RelatedKeywords(query string, books []schema.Book) []string {
	qk := s.key(query)
	seen := map[string]bool{}
	out := []string{}
	add := func(tokens []string) bool {
		for _, t := range tokens {
			if len(out) >= s.maxRelated {
				return false
			}
			k := s.key(t)
			if k == "" || k == qk || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, t)
		}
		return len(out) < s.maxRelated
	}
	for _, b := range books {
		if !add(s.extractor.Extract(b.Title)) {
			break
		}
		if !add(s.extractor.Extract(b.Description)) {
			break
		}
	}
	return out
}

func (s *Searcher) key(v string) string {
	v = strings.TrimSpace(v)
	if s.match == MatchExact {
		return v
	}
	return strings.ToLower(norm.NFKC.String(v))
}

// fanOut searches every keyword concurrently and returns the filtered batches
// indexed like keywords. A failed branch leaves its slot nil.
func (s *Searcher) fanOut(ctx context.Context, keywords []string) [][]schema.Book {
	batches := make([][]schema.Book, len(keywords))
	if len(keywords) == 0 {
		return batches
	}
	var g errgroup.Group
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			raws, err := s.client.Search(ctx, kw)
			if err != nil {
				s.log.Debug("related search failed", zap.String("keyword", kw), zap.Error(err))
				return nil
			}
			batches[i] = s.filter.Apply(raws)
			return nil
		})
	}
	_ = g.Wait()
	return batches
}

// merge appends each batch, in order, to primary, skipping ids already taken.
func merge(primary []schema.Book, batches [][]schema.Book) []schema.Book {
	seen := make(map[string]bool, len(primary))
	out := make([]schema.Book, 0, len(primary))
	for _, b := range primary {
		seen[b.ID] = true
		out = append(out, b)
	}
	for _, batch := range batches {
		for _, b := range batch {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}

func uniqueBooks(books []schema.Book) []schema.Book {
	seen := make(map[string]bool, len(books))
	out := make([]schema.Book, 0, len(books))
	for _, b := range books {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}
