// Package sanitize strips markup from user supplied free text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer removes every HTML element and attribute. It is safe for concurrent use.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer builds a sanitizer on bluemonday's strict policy.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// Clean returns plain text: entities decoded, tags dropped and whitespace collapsed.
// Entity-encoded markup is decoded before the policy runs, and the result never
// contains angle brackets.
func (s *TextSanitizer) Clean(raw string) string {
	stripped := html.UnescapeString(s.policy.Sanitize(html.UnescapeString(raw)))
	return strings.Join(strings.Fields(angleBrackets.Replace(stripped)), " ")
}
