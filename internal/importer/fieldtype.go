package importer

import (
	"strings"

	"contactdash/internal/entity"
)

// InferFieldType guesses a schema type for an auto-created field from its
// header. The "on" substring rule is deliberately broad (it also matches
// e.g. "location"); changing it would silently retype fields created by
// earlier imports.
func InferFieldType(header string) entity.FieldType {
	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "email"):
		return entity.FieldTypeEmail
	case strings.Contains(lower, "phone"):
		return entity.FieldTypePhone
	case strings.Contains(lower, "date"), strings.Contains(lower, "on"):
		return entity.FieldTypeDatetime
	case strings.Contains(lower, "amount"), strings.Contains(lower, "count"):
		return entity.FieldTypeNumber
	default:
		return entity.FieldTypeText
	}
}
