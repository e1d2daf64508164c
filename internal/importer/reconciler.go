// Package importer commits field-mapped contact rows against the shared
// contact store: it extends the field schema with unseen custom columns,
// deduplicates by phone/email against a prefetched snapshot, and classifies
// every row as created, merged, or skipped.
package importer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"contactdash/internal/docstore"
	"contactdash/internal/entity"
	"contactdash/internal/fields"
)

// Reconciler runs bulk imports. All reads happen before any write, so a read
// failure aborts with nothing committed. Writes are not transactional: a
// failure partway through leaves earlier writes applied.
type Reconciler struct {
	store  docstore.Store
	fields *fields.Service

	// OnProgress, when set, receives (processed, total) after each row
	// decision and during the write phase. Used by the wizard's progress
	// stream; errors never flow through it.
	OnProgress func(processed, total int)
}

func New(store docstore.Store, fieldSvc *fields.Service) *Reconciler {
	return &Reconciler{store: store, fields: fieldSvc}
}

type queuedUpdate struct {
	id      string
	partial docstore.Document
}

// ImportContacts merges rows into companyID's contact store. Rows arrive
// with final field labels as keys; skipped columns and fully-empty rows were
// dropped upstream. actor is recorded as lastUpdatedBy on every write.
func (r *Reconciler) ImportContacts(ctx context.Context, companyID string, rows []entity.Contact, actor string) (entity.ImportSummary, error) {
	var summary entity.ImportSummary
	if len(rows) == 0 {
		return summary, nil
	}

	// Read phase. Any failure here aborts before a single write.
	userDocs, err := r.store.GetDocuments(ctx, companyID, docstore.CollectionUsers)
	if err != nil {
		return summary, fmt.Errorf("importer: load agent directory: %w", err)
	}
	emailToUID := make(map[string]string, len(userDocs))
	for _, doc := range userDocs {
		u := userFromDoc(doc)
		if key := u.DirectoryKey(); key != "" {
			emailToUID[key] = u.ResolvedUID()
		}
	}

	if _, err := r.fields.EnsureAll(ctx, companyID, rowLabels(rows[0]), InferFieldType); err != nil {
		return summary, fmt.Errorf("importer: extend field schema: %w", err)
	}

	contactDocs, err := r.store.GetDocuments(ctx, companyID, docstore.CollectionContacts)
	if err != nil {
		return summary, fmt.Errorf("importer: load contacts: %w", err)
	}
	phoneMap := make(map[string]entity.Contact, len(contactDocs))
	emailMap := make(map[string]entity.Contact, len(contactDocs))
	for _, doc := range contactDocs {
		c := entity.Contact(doc)
		if key := c.PhoneKey(); key != "" {
			phoneMap[key] = c
		}
		if key := c.EmailKey(); key != "" {
			emailMap[key] = c
		}
	}

	// Decide phase against the prefetched snapshot. Two rows carrying the
	// same new identity are both classified created; so are two concurrent
	// imports. Accepted race, there is no lock.
	now := time.Now()
	var creates []docstore.Document
	var updates []queuedUpdate

	for i, row := range rows {
		payload := row.Clone()

		agentUID := resolveAgent(row, emailToUID)
		if agentUID != "" {
			payload["agentUid"] = agentUID
		} else {
			payload["agentUid"] = nil
		}
		payload["lastUpdatedBy"] = actor

		// Phone wins when phone and email would match different records.
		var existing entity.Contact
		if key := row.PhoneKey(); key != "" {
			existing = phoneMap[key]
		}
		if existing == nil {
			if key := row.EmailKey(); key != "" {
				existing = emailMap[key]
			}
		}

		if existing != nil {
			partial := docstore.Document{}
			for k, v := range payload {
				newVal := strings.TrimSpace(stringify(v))
				if newVal == "" {
					continue
				}
				if newVal != strings.TrimSpace(stringify(existing[k])) {
					partial[k] = v
				}
			}
			if len(partial) > 0 {
				updates = append(updates, queuedUpdate{id: existing.ID(), partial: partial})
				summary.Merged++
			} else {
				summary.Skipped++
			}
		} else {
			// createdOn defaults only on creation, so re-importing an
			// unchanged row set stays a pure skip.
			if strings.TrimSpace(stringify(payload["createdOn"])) == "" {
				payload["createdOn"] = now.Format(time.RFC3339)
			}
			creates = append(creates, docstore.Document(payload))
			summary.Created++
		}
		r.notify(i+1, len(rows))
	}

	// Write phase: updates one at a time, then one batched create. A
	// failure here leaves prior writes committed.
	for i, u := range updates {
		if err := r.store.UpdateDocument(ctx, companyID, docstore.CollectionContacts, u.id, u.partial); err != nil {
			return summary, fmt.Errorf("importer: update contact %s (%d/%d applied): %w", u.id, i, len(updates), err)
		}
	}
	if len(creates) > 0 {
		if _, err := r.store.BatchAddDocuments(ctx, companyID, docstore.CollectionContacts, creates, 0); err != nil {
			return summary, fmt.Errorf("importer: create contacts: %w", err)
		}
	}

	log.Printf("importer: company=%s created=%d merged=%d skipped=%d",
		companyID, summary.Created, summary.Merged, summary.Skipped)
	return summary, nil
}

func (r *Reconciler) notify(processed, total int) {
	if r.OnProgress != nil {
		r.OnProgress(processed, total)
	}
}

// rowLabels returns the first row's keys in stable order; they define which
// schema fields the import may have to create.
func rowLabels(row entity.Contact) []string {
	labels := make([]string, 0, len(row))
	for k := range row {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// resolveAgent finds any "agent" column on the row and resolves its value
// through the directory. Unresolved agents stay empty.
func resolveAgent(row entity.Contact, emailToUID map[string]string) string {
	for _, k := range rowLabels(row) {
		if !strings.Contains(strings.ToLower(k), "agent") {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(stringify(row[k])))
		if email == "" {
			return ""
		}
		return emailToUID[email]
	}
	return ""
}

func userFromDoc(doc docstore.Document) entity.User {
	u := entity.User{}
	if s, ok := doc["id"].(string); ok {
		u.ID = s
	}
	if s, ok := doc["uid"].(string); ok {
		u.UID = s
	}
	if s, ok := doc["email"].(string); ok {
		u.Email = s
	}
	if s, ok := doc["name"].(string); ok {
		u.Name = s
	}
	return u
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
