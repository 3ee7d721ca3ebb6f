package sanitize

import (
    "net/url"
    "strings"
    "unicode/utf8"

    "bookjournal/src/internal/schema"
)

// CleanString trims and removes ASCII control characters except tab/newline/carriage
// return up to max runes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
    s = strings.TrimSpace(s)
    if s == "" {
        return s
    }
    var b strings.Builder
    n := 0
    for _, r := range s {
        if r == utf8.RuneError {
            continue
        }
        if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
            b.WriteRune(r)
            n++
            if max > 0 && n >= max {
                break
            }
        }
    }
    return strings.TrimSpace(b.String())
}

// CleanURL returns a validated http/https URL or empty string.
func CleanURL(raw string) string {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return ""
    }
    u, err := url.Parse(raw)
    if err != nil || u.Scheme == "" || u.Host == "" {
        return ""
    }
    if u.Scheme != "http" && u.Scheme != "https" {
        return ""
    }
    u.Path = strings.ReplaceAll(u.Path, " ", "%20")
    return u.String()
}

// CleanTags trims, dedupes, and limits tag count. Latin tags are lowercased.
func CleanTags(tags []string) []string {
    if len(tags) == 0 {
        return nil
    }
    const maxTags = 32
    const maxLen = 64
    seen := map[string]bool{}
    out := make([]string, 0, len(tags))
    for _, k := range tags {
        k = strings.ToLower(CleanString(k, maxLen))
        if k == "" || seen[k] {
            continue
        }
        seen[k] = true
        out = append(out, k)
        if len(out) >= maxTags {
            break
        }
    }
    if len(out) == 0 {
        return nil
    }
    return out
}

// CleanQuotes trims quotes and drops empty ones, keeping order and repeats.
func CleanQuotes(quotes []string) []string {
    var out []string
    for _, q := range quotes {
        if q = CleanString(q, 2000); q != "" {
            out = append(out, q)
        }
    }
    return out
}

// CleanBook applies conservative sanitization to all strings in the book.
func CleanBook(b *schema.Book) {
    if b == nil { return }
    b.ID = CleanString(b.ID, 128)
    b.Title = CleanString(b.Title, 512)
    b.Author = CleanString(b.Author, 512)
    b.Publisher = CleanString(b.Publisher, 256)
    b.Description = CleanString(b.Description, 12000)
    b.ImageURL = CleanURL(b.ImageURL)
    b.ISBN = CleanString(b.ISBN, 32)
    b.Source = CleanString(b.Source, 32)
}

// CleanEntry sanitizes the free-text parts of a journal entry.
func CleanEntry(e *schema.JournalEntry) {
    if e == nil { return }
    e.ID = CleanString(e.ID, 64)
    e.BookID = CleanString(e.BookID, 128)
    e.Content = CleanString(e.Content, 20000)
    e.Tags = CleanTags(e.Tags)
    e.Quotes = CleanQuotes(e.Quotes)
}
