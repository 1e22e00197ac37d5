// Package analytics implements the analytical query path: safety
// validation, limit injection, result caching, and the asynchronous
// submit/poll/fetch runner.
package analytics

import "strings"

// forbiddenKeywords are rejected anywhere in the query as case-insensitive
// substrings. This is substring denylisting, not parsing; the hardening
// story for production is a database-enforced read-only role.
var forbiddenKeywords = []string{
	";", "insert ", "update ", "delete ",
	"drop ", "create ", "alter ", "truncate ",
}

// Validation error texts.
const (
	textOnlySelect = "❌ Solo se permiten consultas SELECT."
	textForbidden  = "❌ Consulta no permitida por razones de seguridad."
)

// Validate checks that a query is a read-only SELECT with no statement
// separators or mutating keywords. Returns an error text, or "" when the
// query is acceptable.
func Validate(sql string) string {
	lowered := strings.ToLower(strings.TrimSpace(sql))

	if !strings.HasPrefix(lowered, "select") {
		return textOnlySelect
	}

	for _, kw := range forbiddenKeywords {
		if strings.Contains(lowered, kw) {
			return textForbidden
		}
	}

	return ""
}

// EnsureLimit appends a default row-limit clause when the query carries no
// limit anywhere in its text.
func EnsureLimit(sql string) string {
	if !strings.Contains(strings.ToLower(strings.TrimSpace(sql)), "limit") {
		return sql + " LIMIT 50"
	}
	return sql
}
