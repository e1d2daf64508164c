package docstore

import (
	"context"
	"errors"
)

// Collection names used by the import engine. All collections are scoped
// under a tenant/company identifier.
const (
	CollectionContacts = "contacts"
	CollectionFields   = "contactFields"
	CollectionUsers    = "users"
)

// Document is one stored record. The "id" key carries the document id on
// reads; callers never set it on writes.
type Document = map[string]any

// DefaultBatchSize bounds one batch-create chunk.
const DefaultBatchSize = 400

var ErrNotFound = errors.New("docstore: document not found")

// Store is the document-store collaborator the import engine talks to.
// Every call is fallible; callers must never assume success.
type Store interface {
	GetDocuments(ctx context.Context, companyID, collection string) ([]Document, error)
	AddDocument(ctx context.Context, companyID, collection string, doc Document) (Document, error)
	UpdateDocument(ctx context.Context, companyID, collection, id string, partial Document) error
	DeleteDocument(ctx context.Context, companyID, collection, id string) error
	BatchAddDocuments(ctx context.Context, companyID, collection string, docs []Document, batchSize int) ([]string, error)
}
