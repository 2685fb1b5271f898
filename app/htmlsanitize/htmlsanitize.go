// Package htmlsanitize renders user-written text as safe HTML.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Posts and comments are plain text; every tag is dropped.
var policy = bluemonday.StrictPolicy()

// Sanitize strips all markup from s and escapes what is left.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// Linebreaks sanitizes s and turns newlines into <br>, for use in templates.
func Linebreaks(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	clean := Sanitize(s)
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>\n"))
}
