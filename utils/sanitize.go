package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainText = bluemonday.StrictPolicy()

// SanitizeText strips markup from customer free text before it is forwarded
// to the store. Entities escaped by the policy are decoded again so "&" stays "&".
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
