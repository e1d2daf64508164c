package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreAddAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	added, err := s.AddDocument(ctx, "acme", CollectionContacts, Document{"email": "a@b.com"})
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	id, _ := added["id"].(string)
	if id == "" {
		t.Fatal("AddDocument() returned document without id")
	}

	docs, err := s.GetDocuments(ctx, "acme", CollectionContacts)
	if err != nil {
		t.Fatalf("GetDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}
	if docs[0]["id"] != id {
		t.Fatalf("docs[0][id] = %v, want %s", docs[0]["id"], id)
	}
	if docs[0]["email"] != "a@b.com" {
		t.Fatalf("docs[0][email] = %v, want a@b.com", docs[0]["email"])
	}
}

func TestMemoryStoreCompanyScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.AddDocument(ctx, "acme", CollectionContacts, Document{"email": "a@b.com"}); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	docs, err := s.GetDocuments(ctx, "other", CollectionContacts)
	if err != nil {
		t.Fatalf("GetDocuments() error = %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("len(docs) = %d, want 0", len(docs))
	}
}

func TestMemoryStoreUpdateMergesPartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	added, _ := s.AddDocument(ctx, "acme", CollectionContacts, Document{"email": "a@b.com", "phone": "123"})
	id := added["id"].(string)
	if err := s.UpdateDocument(ctx, "acme", CollectionContacts, id, Document{"phone": "456"}); err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}

	docs, _ := s.GetDocuments(ctx, "acme", CollectionContacts)
	if docs[0]["phone"] != "456" {
		t.Fatalf("phone = %v, want 456", docs[0]["phone"])
	}
	if docs[0]["email"] != "a@b.com" {
		t.Fatalf("email = %v, want untouched a@b.com", docs[0]["email"])
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpdateDocument(context.Background(), "acme", CollectionContacts, "nope", Document{"x": "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateDocument() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	added, _ := s.AddDocument(ctx, "acme", CollectionFields, Document{"label": "Budget"})
	id := added["id"].(string)
	if err := s.DeleteDocument(ctx, "acme", CollectionFields, id); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	docs, _ := s.GetDocuments(ctx, "acme", CollectionFields)
	if len(docs) != 0 {
		t.Fatalf("len(docs) = %d, want 0 after delete", len(docs))
	}

	if err := s.DeleteDocument(ctx, "acme", CollectionFields, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteDocument() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreBatchAdd(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	batch := make([]Document, 5)
	for i := range batch {
		batch[i] = Document{"n": i}
	}
	// Batch size below len(docs) forces chunking.
	ids, err := s.BatchAddDocuments(ctx, "acme", CollectionContacts, batch, 2)
	if err != nil {
		t.Fatalf("BatchAddDocuments() error = %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("len(ids) = %d, want 5", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s in batch", id)
		}
		seen[id] = true
	}

	docs, _ := s.GetDocuments(ctx, "acme", CollectionContacts)
	if len(docs) != 5 {
		t.Fatalf("len(docs) = %d, want 5", len(docs))
	}
}

func TestMemoryStoreMutationIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	added, _ := s.AddDocument(ctx, "acme", CollectionContacts, Document{"email": "a@b.com"})
	docs, _ := s.GetDocuments(ctx, "acme", CollectionContacts)
	docs[0]["email"] = "mutated"

	again, _ := s.GetDocuments(ctx, "acme", CollectionContacts)
	if again[0]["email"] != "a@b.com" {
		t.Fatalf("stored doc %v mutated through returned copy", added["id"])
	}
}
