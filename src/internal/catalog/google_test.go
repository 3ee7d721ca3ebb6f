package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const googleBody = `{"items":[
  {"id":"vol1","volumeInfo":{"title":"倫理学","subtitle":"基礎から","authors":["和辻 哲郎"],"publisher":"岩波書店",
   "publishedDate":"2007-01","description":"倫理学の古典。",
   "industryIdentifiers":[{"type":"ISBN_10","identifier":"4003810000"},{"type":"ISBN_13","identifier":"9784003810000"}],
   "imageLinks":{"thumbnail":"http://books.google.com/books/content?id=vol1"}}},
  {"id":"","volumeInfo":{"title":"no id"}},
  {"id":"vol2","volumeInfo":{"title":"雑誌"}}
]}`

func TestGoogleSearch_MapsVolumes(t *testing.T) {
	var seen []string
	c := NewGoogle("", "", 0, routeHTTP{routes: []route{{"googleapis.com/books/v1/volumes?", 200, googleBody}}, seen: &seen})
	raws, err := c.Search(context.Background(), "倫理")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 records, got %d", len(raws))
	}
	r := raws[0]
	if r.ID != "vol1" || r.Title != "倫理学 基礎から" || r.ISBN != "9784003810000" || r.PublisherName != "岩波書店" {
		t.Fatalf("bad mapping: %+v", r)
	}
	if !strings.HasPrefix(r.ImageURL, "https://") {
		t.Fatalf("thumbnail not upgraded: %s", r.ImageURL)
	}
	if raws[1].PublisherName != "" {
		t.Fatalf("missing publisher should stay empty: %+v", raws[1])
	}
	if !strings.Contains(seen[0], "langRestrict=ja") || strings.Contains(seen[0], "key=") {
		t.Fatalf("unexpected request: %s", seen[0])
	}
}

func TestGoogleSearch_APIKeyAndErrors(t *testing.T) {
	var seen []string
	c := NewGoogle("k1", "", 10, routeHTTP{routes: []route{{"volumes", 429, "quota"}}, seen: &seen})
	_, err := c.Search(context.Background(), "x")
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindRateLimit || ce.Provider != ProviderGoogle {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !strings.Contains(seen[0], "key=k1") || !strings.Contains(seen[0], "maxResults=10") {
		t.Fatalf("unexpected request: %s", seen[0])
	}
}

func TestGoogleLookup(t *testing.T) {
	vol := `{"id":"vol9","volumeInfo":{"title":"精神現象学","publisher":"みすず書房"}}`
	c := NewGoogle("", "https://example.test/volumes/", 0, routeHTTP{routes: []route{{"/volumes/vol9", 200, vol}}})
	r, err := c.Lookup(context.Background(), "vol9")
	if err != nil || r.Title != "精神現象学" {
		t.Fatalf("Lookup: %+v %v", r, err)
	}
	if _, err := c.Lookup(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for 404, got %v", err)
	}
}
