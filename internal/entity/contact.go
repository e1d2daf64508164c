package entity

import (
	"fmt"
	"strings"
)

// Contact is a schema-less value bag keyed by field label. Custom fields are
// created by end users at runtime, so rows stay an open map rather than a
// fixed struct. The document id, when present, lives under "id".
type Contact map[string]any

// PhoneKey returns the trimmed phone dedup key, or "" when absent.
func (c Contact) PhoneKey() string {
	return strings.TrimSpace(stringValue(c["phone"]))
}

// EmailKey returns the lowercased trimmed email dedup key, or "" when absent.
func (c Contact) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(stringValue(c["email"])))
}

func (c Contact) ID() string {
	return stringValue(c["id"])
}

// Clone returns a shallow copy. Values are shared; rows hold scalars only.
func (c Contact) Clone() Contact {
	out := make(Contact, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// stringValue coerces scalar cell values the way the store returns them.
// Spreadsheet parsers sometimes yield numbers for phone-like columns.
func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// ImportSummary is the per-call bulk import result. Never persisted.
type ImportSummary struct {
	Created int `json:"created"`
	Merged  int `json:"merged"`
	Skipped int `json:"skipped"`
}
