package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookjournal/src/internal/schema"
)

const openBDBody = `[{"summary":{"isbn":"9784000000011","title":"純粋理性批判","volume":"上","publisher":"岩波書店",
  "pubdate":"20120116","cover":"https://cover.openbd.jp/9784000000011.jpg","author":"カント／著 篠田英雄／訳"}}]`

func TestOpenBDLookup(t *testing.T) {
	var seen []string
	c := NewOpenBD("", routeHTTP{routes: []route{
		{"isbn=9784000000011", 200, openBDBody},
		{"isbn=9784000000028", 200, `[null]`},
		{"isbn=9784000000035", 200, `{"oops":1}`},
	}, seen: &seen})

	r, err := c.Lookup(context.Background(), "978-4-00-000001-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if r.Title != "純粋理性批判 上" || r.PublisherName != "岩波書店" || r.Source != ProviderOpenBD || r.ID != "9784000000011" {
		t.Fatalf("bad mapping: %+v", r)
	}
	if r.Author != "カント、篠田英雄" {
		t.Fatalf("author not cleaned: %q", r.Author)
	}
	if !strings.HasPrefix(seen[0], DefaultOpenBDURL) {
		t.Fatalf("unexpected endpoint: %s", seen[0])
	}

	if _, err := c.Lookup(context.Background(), "9784000000028"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("[null] should be ErrNotFound, got %v", err)
	}
	if _, err := c.Lookup(context.Background(), "9784000000035"); !errors.Is(err, ErrCatalog) {
		t.Fatalf("object body should be malformed, got %v", err)
	}
	if _, err := c.Lookup(context.Background(), "vol-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-isbn should be ErrNotFound, got %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("non-isbn must not be requested, requests=%d", len(seen))
	}
}

type stubResolver struct {
	r   schema.RawBook
	err error
}

func (s stubResolver) Lookup(ctx context.Context, id string) (schema.RawBook, error) { return s.r, s.err }

func TestLookupChain(t *testing.T) {
	miss := Named{"miss", stubResolver{err: ErrNotFound}}
	boom := Named{"boom", stubResolver{err: &Error{Provider: "boom", Kind: KindStatus, Status: 503, Err: errors.New("down")}}}
	hit := Named{"hit", stubResolver{r: schema.RawBook{ID: "x", Title: "X"}}}

	r, attempts, err := LookupChain(context.Background(), "x", miss, boom, hit)
	if err != nil || r.Title != "X" {
		t.Fatalf("chain: %+v %v", r, err)
	}
	if len(attempts) != 3 || attempts[0].Success || attempts[1].Error == "" || !attempts[2].Success {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}

	if _, _, err := LookupChain(context.Background(), "x", miss, miss); !errors.Is(err, ErrNotFound) {
		t.Fatalf("all misses: want ErrNotFound, got %v", err)
	}
	if _, _, err := LookupChain(context.Background(), "x", boom, miss); !errors.Is(err, ErrCatalog) || errors.Is(err, ErrNotFound) {
		t.Fatalf("provider failure should surface, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, attempts, err := LookupChain(ctx, "x", hit); !errors.Is(err, context.Canceled) || len(attempts) != 0 {
		t.Fatalf("cancelled chain: %v %+v", err, attempts)
	}
}

func TestClientResolver(t *testing.T) {
	c := ClientResolver{Client: searchOnly{raws: []schema.RawBook{{ID: "a", Title: "A"}}}}
	if r, err := c.Lookup(context.Background(), "a"); err != nil || r.Title != "A" {
		t.Fatalf("ClientResolver: %+v %v", r, err)
	}
}
