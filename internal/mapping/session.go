// Package mapping holds the user-adjustable column mapping between a parsed
// upload and the CRM field schema, plus the validation the import wizard
// gates on.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"contactdash/internal/entity"
	"contactdash/internal/fields"
)

var (
	ErrIndexOutOfRange = errors.New("mapping: column index out of range")
	ErrCoreFieldSkip   = errors.New("mapping: core field columns cannot be skipped")
	ErrFieldTaken      = errors.New("mapping: field is already mapped to another column")
	ErrUnknownField    = errors.New("mapping: unknown field")
)

// Session is the editable mapping state for one upload, ordered by column.
// Every user action mutates exactly one entry; failed validations leave the
// state untouched.
type Session struct {
	companyID string
	fields    *fields.Service

	mu      sync.RWMutex
	seeded  []entity.ColumnPrediction
	entries []entity.ColumnPrediction
}

func NewSession(companyID string, fieldSvc *fields.Service, predictions []entity.ColumnPrediction) *Session {
	seeded := make([]entity.ColumnPrediction, len(predictions))
	entries := make([]entity.ColumnPrediction, len(predictions))
	copy(seeded, predictions)
	copy(entries, predictions)
	return &Session{
		companyID: companyID,
		fields:    fieldSvc,
		seeded:    seeded,
		entries:   entries,
	}
}

// Entries returns a copy of the current mapping in column order.
func (s *Session) Entries() []entity.ColumnPrediction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.ColumnPrediction, len(s.entries))
	copy(out, s.entries)
	return out
}

// SelectField maps column index to an existing schema field. A field held by
// another column is unavailable, so two source columns cannot silently
// collide onto the same target.
func (s *Session) SelectField(ctx context.Context, index int, fieldID string) error {
	schema, err := s.fields.All(ctx, s.companyID)
	if err != nil {
		return err
	}
	var target *entity.ContactField
	for i := range schema {
		if schema[i].MatchesKey(fieldID) {
			target = &schema[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, fieldID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	for i, e := range s.entries {
		if i != index && target.MatchesKey(e.SuggestedHeader) {
			return fmt.Errorf("%w: %q", ErrFieldTaken, target.Label)
		}
	}

	key := target.ID
	if !target.Core {
		key = target.Label
	}
	s.entries[index].SuggestedHeader = key
	s.entries[index].IsCustom = !target.Core
	return nil
}

// Skip excludes the column from import entirely. Rejected when the column
// currently maps to a core field, since hiding it would make required-field
// validation unsatisfiable. The check runs against the entry's pre-selection
// state, not the global required set.
func (s *Session) Skip(ctx context.Context, index int) error {
	schema, err := s.fields.All(ctx, s.companyID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return ErrIndexOutOfRange
	}
	current := s.entries[index].SuggestedHeader
	for _, f := range schema {
		if f.Core && f.MatchesKey(current) {
			return fmt.Errorf("%w: %q", ErrCoreFieldSkip, f.Label)
		}
	}
	s.entries[index].SuggestedHeader = ""
	s.entries[index].IsCustom = false
	return nil
}

// CreateCustomField creates a new non-core schema field and maps the column
// to it. Label validation (non-empty, case-insensitively unique) happens in
// the shared field-creation path.
func (s *Session) CreateCustomField(ctx context.Context, index int, label string) (entity.ContactField, error) {
	s.mu.RLock()
	inRange := index >= 0 && index < len(s.entries)
	s.mu.RUnlock()
	if !inRange {
		return entity.ContactField{}, ErrIndexOutOfRange
	}

	field, err := s.fields.Create(ctx, s.companyID, label, entity.FieldTypeText)
	if err != nil {
		return entity.ContactField{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.entries) {
		return field, ErrIndexOutOfRange
	}
	s.entries[index].SuggestedHeader = field.Label
	s.entries[index].IsCustom = true
	return field, nil
}

// DeleteField removes a non-core field from the schema. Columns still mapped
// to the deleted field keep their stale target; there is no cascading un-map.
func (s *Session) DeleteField(ctx context.Context, fieldID string) error {
	return s.fields.Delete(ctx, s.companyID, fieldID)
}

// Reset restores the seeded prediction for one column.
func (s *Session) Reset(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.seeded) {
		return ErrIndexOutOfRange
	}
	s.entries[index] = s.seeded[index]
	return nil
}

// IsTaken reports whether fieldID is already held by a column other than
// exceptIndex. The UI uses this to disable re-selection of taken fields.
func (s *Session) IsTaken(fieldID string, exceptIndex int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, e := range s.entries {
		if i == exceptIndex {
			continue
		}
		if e.SuggestedHeader != "" && strings.EqualFold(e.SuggestedHeader, fieldID) {
			return true
		}
	}
	return false
}

// ValidateMappedFields checks the current state against the live core fields.
func (s *Session) ValidateMappedFields(ctx context.Context) (Result, error) {
	schema, err := s.fields.All(ctx, s.companyID)
	if err != nil {
		return Result{}, err
	}
	var core []entity.ContactField
	for _, f := range schema {
		if f.Core {
			core = append(core, f)
		}
	}
	return Validate(s.Entries(), core), nil
}
