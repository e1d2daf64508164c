// Package fields manages the live CRM field schema: core-field seeding,
// user-created custom fields, and the idempotent ensure path shared by the
// mapping step and the bulk importer.
package fields

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contactdash/internal/docstore"
	"contactdash/internal/entity"
)

var (
	ErrEmptyLabel     = errors.New("fields: field label is required")
	ErrDuplicateLabel = errors.New("fields: a field with this label already exists")
	ErrCoreImmutable  = errors.New("fields: core fields cannot be deleted")
	ErrNotFound       = errors.New("fields: field not found")
)

type Service struct {
	store docstore.Store
}

func New(store docstore.Store) *Service {
	return &Service{store: store}
}

// All returns the live schema in stored order.
func (s *Service) All(ctx context.Context, companyID string) ([]entity.ContactField, error) {
	docs, err := s.store.GetDocuments(ctx, companyID, docstore.CollectionFields)
	if err != nil {
		return nil, fmt.Errorf("fields: load schema: %w", err)
	}
	out := make([]entity.ContactField, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fieldFromDoc(doc))
	}
	return out, nil
}

// Seed writes the fixed core fields into an empty tenant. Safe to call on
// every boot; tenants that already have any fields are left alone.
func (s *Service) Seed(ctx context.Context, companyID string) error {
	existing, err := s.All(ctx, companyID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	docs := make([]docstore.Document, 0, 4)
	for _, f := range entity.CoreFields() {
		docs = append(docs, docstore.Document{
			"fieldId": f.ID,
			"label":   f.Label,
			"type":    string(f.Type),
			"core":    true,
		})
	}
	if _, err := s.store.BatchAddDocuments(ctx, companyID, docstore.CollectionFields, docs, 0); err != nil {
		return fmt.Errorf("fields: seed core schema: %w", err)
	}
	return nil
}

// Create adds a user-defined custom field. The label must be non-empty and
// unique case-insensitively across the live schema.
func (s *Service) Create(ctx context.Context, companyID, label string, typ entity.FieldType) (entity.ContactField, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return entity.ContactField{}, ErrEmptyLabel
	}
	if typ == "" {
		typ = entity.FieldTypeText
	}
	existing, err := s.All(ctx, companyID)
	if err != nil {
		return entity.ContactField{}, err
	}
	for _, f := range existing {
		if strings.EqualFold(f.Label, label) {
			return entity.ContactField{}, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
	}

	now := time.Now()
	doc, err := s.store.AddDocument(ctx, companyID, docstore.CollectionFields, docstore.Document{
		"label":     label,
		"type":      string(typ),
		"core":      false,
		"createdAt": now.Format(time.RFC3339),
		"updatedAt": now.Format(time.RFC3339),
	})
	if err != nil {
		return entity.ContactField{}, fmt.Errorf("fields: create %q: %w", label, err)
	}
	return fieldFromDoc(doc), nil
}

// Ensure returns the existing field matching label (case-insensitively) or
// creates a non-core one with the given type. Both the mapping step and the
// importer converge on this path.
func (s *Service) Ensure(ctx context.Context, companyID, label string, typ entity.FieldType) (entity.ContactField, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return entity.ContactField{}, ErrEmptyLabel
	}
	existing, err := s.All(ctx, companyID)
	if err != nil {
		return entity.ContactField{}, err
	}
	for _, f := range existing {
		if strings.EqualFold(f.Label, label) {
			return f, nil
		}
	}
	return s.Create(ctx, companyID, label, typ)
}

// EnsureAll batch-creates every label not yet present in the schema, with a
// per-label inferred type. Returns the full schema after the writes.
func (s *Service) EnsureAll(ctx context.Context, companyID string, labels []string, inferType func(string) entity.FieldType) ([]entity.ContactField, error) {
	existing, err := s.All(ctx, companyID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		known[strings.ToLower(f.Label)] = struct{}{}
	}

	var docs []docstore.Document
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		typ := entity.FieldTypeText
		if inferType != nil {
			typ = inferType(label)
		}
		docs = append(docs, docstore.Document{
			"label": label,
			"type":  string(typ),
			"core":  false,
		})
	}
	if len(docs) > 0 {
		if _, err := s.store.BatchAddDocuments(ctx, companyID, docstore.CollectionFields, docs, 0); err != nil {
			return nil, fmt.Errorf("fields: extend schema: %w", err)
		}
	}
	return s.All(ctx, companyID)
}

// Delete removes a non-core field. Columns still mapped to the deleted field
// are not retouched; the mapping keeps pointing at the stale label.
func (s *Service) Delete(ctx context.Context, companyID, fieldID string) error {
	existing, err := s.All(ctx, companyID)
	if err != nil {
		return err
	}
	for _, f := range existing {
		if f.ID != fieldID && !strings.EqualFold(f.Label, fieldID) {
			continue
		}
		if f.Core {
			return ErrCoreImmutable
		}
		if err := s.store.DeleteDocument(ctx, companyID, docstore.CollectionFields, f.ID); err != nil {
			return fmt.Errorf("fields: delete %q: %w", f.Label, err)
		}
		return nil
	}
	return ErrNotFound
}

func fieldFromDoc(doc docstore.Document) entity.ContactField {
	f := entity.ContactField{
		ID:    asString(doc["id"]),
		Label: asString(doc["label"]),
		Type:  entity.FieldType(asString(doc["type"])),
		Core:  asBool(doc["core"]),
	}
	// Core fields keep their fixed ids so mapping targets stay stable
	// across tenants.
	if fid := asString(doc["fieldId"]); fid != "" {
		f.ID = fid
	}
	if f.Type == "" {
		f.Type = entity.FieldTypeText
	}
	return f
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
