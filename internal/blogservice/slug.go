package blogservice

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const maxSlugBase = 50

var (
	slugInvalidRX    = regexp.MustCompile(`[^a-z0-9\s\p{Zs}-]`)
	slugWhitespaceRX = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// slugify lowercases the title, keeps ASCII letters, digits and hyphens, and joins words with hyphens.
func slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalidRX.ReplaceAllString(s, "")
	s = slugWhitespaceRX.ReplaceAllString(s, "-")
	if len(s) > maxSlugBase {
		s = s[:maxSlugBase]
	}
	return s
}

func makeSlug(title string, t time.Time) string {
	return slugify(title) + "-" + strconv.FormatInt(t.UnixMilli(), 10)
}
