package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// jaDate matches the catalog forms "2020年04月15日", "2020年4月", "2020年".
var jaDate = regexp.MustCompile(`(\d{4})年(?:\s*(\d{1,2})月)?(?:\s*(\d{1,2})日)?`)

var isoLayouts = []string{"2006-01-02", "2006-01", "2006/01/02", "2006/01", "2006"}

// ParsePublishDate converts a provider date string into a UTC date. Missing
// month or day default to 1. Returns nil when no plausible date is present.
func ParsePublishDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if m := jaDate.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, d := 1, 1
		if m[2] != "" { mo, _ = strconv.Atoi(m[2]) }
		if m[3] != "" { d, _ = strconv.Atoi(m[3]) }
		return build(y, mo, d)
	}
	for _, layout := range isoLayouts {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return build(t.Year(), int(t.Month()), t.Day())
		}
	}
	if y := ExtractYear(s); y > 0 {
		return build(y, 1, 1)
	}
	return nil
}

func build(y, mo, d int) *time.Time {
	if mo < 1 || mo > 12 { mo = 1 }
	if d < 1 || d > 31 { d = 1 }
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) {
		// day overflowed into the next month; clamp to the first
		t = time.Date(y, time.Month(mo), 1, 0, 0, 0, 0, time.UTC)
	}
	return &t
}

// ExtractYear scans a string and returns a plausible 4-digit year if found.
func ExtractYear(s string) int {
	s = strings.TrimSpace(s)
	for i := 0; i+4 <= len(s); i++ {
		var y int
		if _, err := fmt.Sscanf(s[i:i+4], "%d", &y); err == nil {
			if y >= 1000 && y <= time.Now().Year()+1 {
				return y
			}
		}
	}
	return 0
}

// FormatDate renders a date as YYYY-MM-DD, or "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ParseDay parses a YYYY-MM-DD journal date in local time; empty means today.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}
