// Package predict maps raw spreadsheet headers to CRM contact fields using
// keyword heuristics, value-pattern checks against sampled rows, and an exact
// match against the live field schema.
package predict

import "strings"

// Normalize canonicalizes a header for comparison: lowercase with every
// non-alphanumeric character stripped. "Phone #", "phone_number" and "PHONE"
// all reduce to comparable tokens. Total and idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
