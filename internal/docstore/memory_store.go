package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It is thread-safe and used
// for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]Document // company -> collection -> id -> doc
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]map[string]Document),
	}
}

func (s *MemoryStore) GetDocuments(_ context.Context, companyID, collection string) ([]Document, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.data[companyID][collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneWithID(id, coll[id]))
	}
	return out, nil
}

func (s *MemoryStore) AddDocument(_ context.Context, companyID, collection string, doc Document) (Document, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID(collection)
	s.put(companyID, collection, id, doc)
	return cloneWithID(id, doc), nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, companyID, collection, id string, partial Document) error {
	companyID = strings.TrimSpace(companyID)
	id = strings.TrimSpace(id)
	if companyID == "" || id == "" {
		return fmt.Errorf("docstore: company id and document id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[companyID][collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, companyID, collection, id string) error {
	companyID = strings.TrimSpace(companyID)
	id = strings.TrimSpace(id)
	if companyID == "" || id == "" {
		return fmt.Errorf("docstore: company id and document id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.data[companyID][collection]
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	delete(coll, id)
	return nil
}

func (s *MemoryStore) BatchAddDocuments(_ context.Context, companyID, collection string, docs []Document, batchSize int) ([]string, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := s.nextID(collection)
		s.put(companyID, collection, id, doc)
		ids = append(ids, id)
	}
	return ids, nil
}

// put stores a defensive copy so later caller mutations don't leak in.
func (s *MemoryStore) put(companyID, collection, id string, doc Document) {
	if s.data[companyID] == nil {
		s.data[companyID] = make(map[string]map[string]Document)
	}
	if s.data[companyID][collection] == nil {
		s.data[companyID][collection] = make(map[string]Document)
	}
	stored := make(Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		stored[k] = v
	}
	s.data[companyID][collection][id] = stored
}

func (s *MemoryStore) nextID(collection string) string {
	s.seq++
	return fmt.Sprintf("%s-%d-%d", collection, time.Now().UnixNano(), s.seq)
}

func cloneWithID(id string, doc Document) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}
