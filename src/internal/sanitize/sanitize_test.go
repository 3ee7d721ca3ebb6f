package sanitize

import (
    "net/url"
    "testing"
    "unicode/utf8"

    "bookjournal/src/internal/schema"
)

func TestCleanString(t *testing.T) {
    in := "  \tHello\x00World\n  "
    out := CleanString(in, 100)
    if out != "HelloWorld" && out != "HelloWorld\n" { // allow newline if preserved
        t.Fatalf("CleanString unexpected: %q", out)
    }
    if s := CleanString("abcdef", 3); s != "abc" {
        t.Fatalf("CleanString truncation: want 'abc', got %q", s)
    }
    if s := CleanString("認識論の構造", 3); s != "認識論" {
        t.Fatalf("CleanString rune truncation: got %q", s)
    }
    if !utf8.ValidString(out) {
        t.Fatalf("CleanString produced invalid utf8")
    }
}

func TestCleanURL(t *testing.T) {
    if CleanURL("") != "" { t.Fatalf("CleanURL empty should be empty") }
    if CleanURL("not a url") != "" { t.Fatalf("CleanURL invalid should be empty") }
    u := CleanURL("https://example.com/a b")
    if _, err := url.Parse(u); err != nil { t.Fatalf("CleanURL not parseable: %v", err) }
    if CleanURL("ftp://x") != "" { t.Fatalf("only http/https allowed") }
}

func TestCleanTags(t *testing.T) {
    in := []string{" A ", "a", "哲学", "哲学 "}
    out := CleanTags(in)
    if len(out) != 2 { t.Fatalf("CleanTags dedupe failed: %v", out) }
    if out[0] != "a" || out[1] != "哲学" { t.Fatalf("unexpected order: %v", out) }
    if CleanTags([]string{" "}) != nil { t.Fatalf("blank tags should be nil") }
}

func TestCleanBookAndEntry(t *testing.T) {
    b := schema.Book{ID: " 978 ", Title: "  倫理学 \x01", ImageURL: "javascript:alert(1)"}
    CleanBook(&b)
    if b.ID != "978" || b.Title != "倫理学" || b.ImageURL != "" { t.Fatalf("CleanBook: %+v", b) }

    e := schema.JournalEntry{ID: " x ", Content: "  memo ", Tags: []string{"X", "x"}, Quotes: []string{" ", "「知」"}}
    CleanEntry(&e)
    if e.ID != "x" || e.Content != "memo" { t.Fatalf("CleanEntry trim: %+v", e) }
    if len(e.Tags) != 1 || e.Tags[0] != "x" { t.Fatalf("CleanEntry tags: %v", e.Tags) }
    if len(e.Quotes) != 1 || e.Quotes[0] != "「知」" { t.Fatalf("CleanEntry quotes: %v", e.Quotes) }
}
