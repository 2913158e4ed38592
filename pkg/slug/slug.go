package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxLength caps generated slugs so file names stay short
const MaxLength = 50

// Fallback is used when nothing slug-worthy is left of the input
const Fallback = "untitled"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases s and collapses every run of other characters into a
// single hyphen.
func Generate(s string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return Fallback
	}

	if len(slug) > MaxLength {
		slug = strings.TrimRight(slug[:MaxLength], "-")
	}
	return slug
}

// WithID prefixes the slug of s with a numeric id, e.g. "12-fix-login".
// Ids keep names unique when two titles slug to the same value.
func WithID(id int64, s string) string {
	return strconv.FormatInt(id, 10) + "-" + Generate(s)
}

// ParseID extracts the id prefix written by WithID.
func ParseID(name string) (int64, bool) {
	prefix, _, found := strings.Cut(name, "-")
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
