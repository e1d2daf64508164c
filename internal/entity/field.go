package entity

import (
	"strings"
	"time"
)

// FieldType enumerates the value types a contact field can carry.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypePhone    FieldType = "phone"
	FieldTypeEmail    FieldType = "email"
	FieldTypeDatetime FieldType = "datetime"
)

// ContactField is one entry of the live CRM field schema. The label doubles
// as the row key contacts are stored under, so labels must stay unique
// case-insensitively. Core fields are seeded at boot and cannot be deleted.
type ContactField struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Core      bool      `json:"core"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CoreFields returns the fixed core schema seeded into an empty tenant.
// Ordering is significant: required-mapping errors are reported in this order.
func CoreFields() []ContactField {
	return []ContactField{
		{ID: "firstName", Label: "First Name", Type: FieldTypeText, Core: true},
		{ID: "lastName", Label: "Last Name", Type: FieldTypeText, Core: true},
		{ID: "phone", Label: "Phone", Type: FieldTypePhone, Core: true},
		{ID: "email", Label: "Email", Type: FieldTypeEmail, Core: true},
	}
}

// MatchesKey reports whether the given mapping target refers to this field,
// by id or by label, ignoring case.
func (f ContactField) MatchesKey(key string) bool {
	return strings.EqualFold(key, f.ID) || strings.EqualFold(key, f.Label)
}
