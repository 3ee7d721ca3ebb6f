// Package keywords pulls candidate search terms out of Japanese book text
// without a dictionary: text is cut wherever the script changes, so kanji
// compounds and katakana loanwords survive while hiragana particles and
// punctuation act as separators.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	minRunes = 2
	maxRunes = 12
)

// DefaultStopWords are frequent catalog words that make poor related searches.
var DefaultStopWords = []string{
	"本書", "著者", "研究", "入門", "書籍", "解説", "新版", "改訂", "増補", "文庫",
	"上巻", "下巻", "全集", "刊行", "出版", "以上", "以下", "現在", "一冊", "全体",
	"問題", "内容", "方法", "必要", "重要", "可能", "自身", "今日", "各章", "本稿",
	"シリーズ", "テキスト",
	"the", "and", "of", "in", "on", "to", "for", "a", "an", "with", "by", "from", "is", "are",
}

type class int

const (
	sep class = iota
	kanji
	katakana
	latin
)

// Extractor is safe for concurrent use.
type Extractor struct {
	stop map[string]bool
}

// New returns an extractor with DefaultStopWords plus extra.
func New(extra ...string) *Extractor {
	stop := make(map[string]bool, len(DefaultStopWords)+len(extra))
	for _, w := range append(append([]string(nil), DefaultStopWords...), extra...) {
		w = strings.ToLower(norm.NFKC.String(strings.TrimSpace(w)))
		if w != "" {
			stop[w] = true
		}
	}
	return &Extractor{stop: stop}
}

// Extract returns the distinct keyword candidates of text ordered by
// frequency, ties broken by first appearance. The result is deterministic
// and may be empty.
func (e *Extractor) Extract(text string) []string {
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	count := map[string]int{}
	first := map[string]int{}
	var order []string
	for i, tok := range tokens {
		if _, ok := count[tok]; !ok {
			first[tok] = i
			order = append(order, tok)
		}
		count[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if count[a] != count[b] {
			return count[a] > count[b]
		}
		return first[a] < first[b]
	})
	return order
}

func (e *Extractor) tokenize(text string) []string {
	text = norm.NFKC.String(text)
	var out []string
	var run []rune
	cur := sep
	flush := func() {
		if len(run) > 0 {
			if tok, ok := e.accept(string(run), cur); ok {
				out = append(out, tok)
			}
		}
		run = run[:0]
	}
	for _, r := range text {
		c := classify(r)
		if c != cur {
			flush()
			cur = c
		}
		if c != sep {
			run = append(run, r)
		}
	}
	flush()
	return out
}

func (e *Extractor) accept(tok string, c class) (string, bool) {
	n := len([]rune(tok))
	switch c {
	case kanji, katakana:
		if n < minRunes || n > maxRunes {
			return "", false
		}
		if c == katakana && strings.Trim(tok, "ー") == "" {
			return "", false
		}
	case latin:
		tok = strings.ToLower(tok)
		if n < minRunes || isDigits(tok) {
			return "", false
		}
	default:
		return "", false
	}
	if e.stop[tok] {
		return "", false
	}
	return tok, true
}

func classify(r rune) class {
	switch {
	case unicode.Is(unicode.Han, r) || r == '々' || r == '〆':
		return kanji
	case r == 'ー' || (unicode.Is(unicode.Katakana, r) && r != '・'):
		return katakana
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return latin
	}
	return sep
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
