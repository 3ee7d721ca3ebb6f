package publisher

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/unicode/norm"

	"bookjournal/src/internal/catalog"
	"bookjournal/src/internal/schema"
)

// DefaultAcademic lists name fragments of Japanese academic publishers.
var DefaultAcademic = []string{
	"岩波書店",
	"東京大学出版会",
	"京都大学学術出版会",
	"名古屋大学出版会",
	"大阪大学出版会",
	"慶應義塾大学出版会",
	"法政大学出版局",
	"みすず書房",
	"勁草書房",
	"有斐閣",
	"創文社",
	"未來社",
	"ミネルヴァ書房",
	"筑摩書房",
	"講談社学術文庫",
	"中央公論新社",
	"白水社",
	"青土社",
	"世界思想社",
	"晃洋書房",
}

// Filter keeps records whose publisher name contains an allow-listed fragment.
// It holds no mutable state after construction and is safe for concurrent use.
type Filter struct {
	matcher   *ahocorasick.Matcher
	fragments []string
}

// New builds a filter over the given fragments. Blank fragments are ignored;
// a filter with no fragments keeps nothing.
func New(fragments []string) *Filter {
	seen := map[string]bool{}
	clean := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = normalize(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		clean = append(clean, f)
	}
	f := &Filter{fragments: clean}
	if len(clean) > 0 {
		f.matcher = ahocorasick.NewStringMatcher(clean)
	}
	return f
}

// Fragments returns the normalized allow-list.
func (f *Filter) Fragments() []string { return append([]string(nil), f.fragments...) }

// Allowed reports whether a publisher name matches the allow-list.
func (f *Filter) Allowed(publisherName string) bool {
	if f.matcher == nil {
		return false
	}
	name := normalize(publisherName)
	if name == "" {
		return false
	}
	return len(f.matcher.MatchThreadSafe([]byte(name))) > 0
}

// Apply keeps the allowed records, in input order, as normalized books.
func (f *Filter) Apply(raws []schema.RawBook) []schema.Book {
	out := make([]schema.Book, 0, len(raws))
	for _, r := range raws {
		if !f.Allowed(r.PublisherName) {
			continue
		}
		out = append(out, catalog.NewBook(r))
	}
	return out
}

// normalize folds full-width/half-width variants so "ｍｉｓｕｚｕ" style input
// and ideographic spaces compare equal to the allow-list.
func normalize(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
