package util

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"\"", "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	"\\", "&#x5C;",
	"`", "&#96;",
)

// EscapeText trims s and HTML-escapes it for storage in records that are
// rendered by browsers. Slashes, backslashes and backticks are escaped too.
func EscapeText(s string) string {
	return htmlEscaper.Replace(strings.TrimSpace(s))
}
