// Package sanitize strips markup from user-submitted text before storage.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes all HTML tags and trims surrounding whitespace. Post bodies and
// comments are plain text; line breaks inside the text are preserved.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
