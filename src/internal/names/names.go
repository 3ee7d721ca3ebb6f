package names

import (
    "strings"
    "unicode/utf8"
)

// roleSuffixes are contributor roles Japanese catalogs append to a name.
var roleSuffixes = []string{"編著", "監修", "監訳", "共著", "著", "編", "訳", "作", "画"}

// Clean trims a single contributor name and drops a trailing role marker:
// "山田 太郎 著" -> "山田 太郎". A one-rune marker glued to the name is kept,
// so "佐藤栄作" stays intact. Full-width spaces are folded to ASCII.
func Clean(name string) string {
    name = strings.TrimSpace(strings.ReplaceAll(name, "　", " "))
    for _, suf := range roleSuffixes {
        if !strings.HasSuffix(name, suf) {
            continue
        }
        rest := strings.TrimSuffix(name, suf)
        bare := strings.TrimRight(rest, " /／")
        if bare != "" && (bare != rest || utf8.RuneCountInString(suf) > 1) {
            name = bare
        }
        break
    }
    return strings.Join(strings.Fields(name), " ")
}

func isRole(s string) bool {
    for _, r := range roleSuffixes {
        if s == r {
            return true
        }
    }
    return false
}

// Split breaks a provider author field into cleaned names. Rakuten separates
// contributors with "/", other catalogs use "、" or ",".
func Split(field string) []string {
    field = strings.TrimSpace(field)
    if field == "" {
        return nil
    }
    parts := strings.FieldsFunc(field, func(r rune) bool {
        return r == '/' || r == '／' || r == '、' || r == ',' || r == '，' || r == ';'
    })
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if c := Clean(p); c != "" && !isRole(c) {
            out = append(out, c)
        }
    }
    return out
}

// Join renders contributor names the way the journal displays them.
func Join(names []string) string {
    out := make([]string, 0, len(names))
    for _, n := range names {
        if c := Clean(n); c != "" {
            out = append(out, c)
        }
    }
    return strings.Join(out, "、")
}
