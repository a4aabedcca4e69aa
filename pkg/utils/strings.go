package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile("[^a-z0-9 -]+")
	slugDashes  = regexp.MustCompile("-+")
)

// GenerateSlug converts a string into a URL-friendly slug.
// e.g. "Girls' Winter Boots!" -> "girls-winter-boots"
func GenerateSlug(input string) string {
	s := strings.ToLower(input)
	s = slugInvalid.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// NormalizeArticle trims and upper-cases an article number ("a123 " -> "A123").
func NormalizeArticle(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
