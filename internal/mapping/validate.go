package mapping

import (
	"strings"

	"contactdash/internal/entity"
)

// Result is the outcome of a mapping validation pass.
type Result struct {
	IsValid        bool                  `json:"isValid"`
	UnmappedFields []entity.ContactField `json:"unmappedFields"`
}

// Validate checks that every required core field is mapped by some column.
// createdOn is always system-derived at import time and is never required
// here. A field counts as mapped when any entry's target equals its id or
// label case-insensitively. Pure and synchronous.
func Validate(entries []entity.ColumnPrediction, coreFields []entity.ContactField) Result {
	mapped := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.SuggestedHeader != "" {
			mapped = append(mapped, e.SuggestedHeader)
		}
	}

	var unmapped []entity.ContactField
	for _, f := range coreFields {
		if !f.Core || isCreatedOn(f) {
			continue
		}
		found := false
		for _, target := range mapped {
			if f.MatchesKey(target) {
				found = true
				break
			}
		}
		if !found {
			unmapped = append(unmapped, f)
		}
	}
	return Result{IsValid: len(unmapped) == 0, UnmappedFields: unmapped}
}

func isCreatedOn(f entity.ContactField) bool {
	return strings.EqualFold(f.ID, "createdOn") || strings.EqualFold(f.Label, "Created On")
}
