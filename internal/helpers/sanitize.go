package helpers

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeText strips markup from free text supplied by clients. Entities
// are decoded after stripping, so it repeats until decoding no longer
// uncovers new markup. Input that never settles loses its angle brackets.
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(angleBrackets.Replace(s))
}

func SanitizeList(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, SanitizeText(s))
	}
	return out
}

func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeText(*s)
	return &v
}
