// Package validation checks user-supplied search input before it reaches
// the query planner. It sits above the planner: both the CLI and the HTTP
// server call it at their boundary, while the core itself accepts any
// query text.
package validation

import (
	"strings"

	"github.com/example/pubsearch/internal/apperrors"
)

// MinQueryLength is the minimum query length the CLI and HTTP server
// enforce at their boundary; the core query planner itself does not
// enforce a minimum.
const MinQueryLength = 3

// validFields are the field names SearchField accepts.
var validFields = map[string]bool{"title": true, "author": true, "abstract": true}

// ValidateSearchQuery strips surrounding whitespace and control characters
// from query and returns apperrors.InvalidQuery if the cleaned result is
// shorter than MinQueryLength.
func ValidateSearchQuery(query string) (string, error) {
	cleaned := sanitize(query)
	if len(cleaned) < MinQueryLength {
		return "", apperrors.NewInvalidQuery(query, "query must be at least 3 characters")
	}
	return cleaned, nil
}

// ValidateField reports whether field is one of "title", "author", or
// "abstract", returning apperrors.InvalidQuery otherwise.
func ValidateField(field string) error {
	if !validFields[field] {
		return apperrors.NewInvalidQuery(field, "field must be title, author, or abstract")
	}
	return nil
}

// sanitize strips control characters and collapses internal whitespace
// runs, leaving leading/trailing quote characters untouched since phrase
// detection depends on them.
func sanitize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		return r
	}, s)
	fields := strings.Fields(mapped)
	return strings.TrimSpace(strings.Join(fields, " "))
}
