package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ratingRegexp = regexp.MustCompile(`^\d+\.\d+$`)
	widthRegexp  = regexp.MustCompile(`width:\s*(\d+)%`)

	publishDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+首次发表`),
		regexp.MustCompile(`(\d{4}-\d{1,2}-\d{1,2})\s+首次发表`),
		regexp.MustCompile(`(\d{4}/\d{2}/\d{2})\s+首次发表`),
		regexp.MustCompile(`(\d{4}\.\d{2}\.\d{2})\s+首次发表`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	}
	looseDateRegexp   = regexp.MustCompile(`(\d{4}-\d{1,2}-\d{1,2})`)
	leadingDateRegexp = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
)

// AcceptCount accepts fragments made only of digits and at least minLen long.
// The length floor keeps rank badges out of generic bold-text locators.
func AcceptCount(minLen int) Accept {
	return func(s string) bool {
		_, ok := ParseCount(s, minLen)
		return ok
	}
}

// ParseCount parses an all-digit fragment of at least minLen digits.
func ParseCount(s string, minLen int) (int, bool) {
	if s == "" || len(s) < minLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AcceptRating accepts strict decimal fragments such as "4.50".
func AcceptRating(s string) bool { return ratingRegexp.MatchString(s) }

// ParseRating parses a strict decimal fragment.
func ParseRating(s string) (float64, bool) {
	if !AcceptRating(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// StarRating converts the fill width of a star widget ("width: 90%") to a
// 0–5 rating rounded to one decimal. A bare percentage ("90%") is accepted too.
func StarRating(style string) float64 {
	m := widthRegexp.FindStringSubmatch(style)
	var digits string
	if len(m) == 2 {
		digits = m[1]
	} else {
		digits = strings.TrimSuffix(strings.TrimSpace(style), "%")
	}
	pct, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return math.Round(float64(pct)/20*10) / 10
}

// NormalizePublishDate extracts a publish date from timeline text and
// rewrites "/" and "." separators to "-".
func NormalizePublishDate(text string) (string, bool) {
	for _, re := range publishDatePatterns {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			d := strings.NewReplacer("/", "-", ".", "-").Replace(m[1])
			return d, true
		}
	}
	return "", false
}

func looseDate(text string) (string, bool) {
	if !strings.Contains(text, "首次发表") && !leadingDateRegexp.MatchString(text) {
		return "", false
	}
	m := looseDateRegexp.FindStringSubmatch(text)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}
