package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists documents as JSONB rows. The field-schema collection
// is read on every prediction and import, so those reads go through a small
// LRU keyed by company id, invalidated on any write to the collection.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	seqMu sync.Mutex
	seq   int64

	fieldCache *lru.Cache[string, []Document]
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, []Document](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, fieldCache: cache}, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("docstore: store is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  collection TEXT NOT NULL,
  data JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_documents_company_collection
  ON documents (company_id, collection);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) GetDocuments(ctx context.Context, companyID, collection string) ([]Document, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	if collection == CollectionFields {
		if cached, ok := s.fieldCache.Get(companyID); ok {
			return cloneDocs(cached), nil
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE company_id = $1 AND collection = $2 ORDER BY created_at, id`,
		companyID, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", collection, err)
		}
		doc := Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err)
		}
		doc["id"] = id
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if collection == CollectionFields {
		s.fieldCache.Add(companyID, cloneDocs(out))
	}
	return out, nil
}

func (s *PostgresStore) AddDocument(ctx context.Context, companyID, collection string, doc Document) (Document, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	id := s.nextID(collection)
	raw, err := encodeDoc(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, company_id, collection, data) VALUES ($1, $2, $3, $4)`,
		id, companyID, collection, raw); err != nil {
		return nil, fmt.Errorf("docstore: insert %s: %w", collection, err)
	}
	s.invalidate(companyID, collection)

	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, companyID, collection, id string, partial Document) error {
	companyID = strings.TrimSpace(companyID)
	id = strings.TrimSpace(id)
	if companyID == "" || id == "" {
		return fmt.Errorf("docstore: company id and document id are required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	raw, err := encodeDoc(partial)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $1::jsonb
 WHERE id = $2 AND company_id = $3 AND collection = $4`,
		raw, id, companyID, collection)
	if err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.invalidate(companyID, collection)
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, companyID, collection, id string) error {
	companyID = strings.TrimSpace(companyID)
	id = strings.TrimSpace(id)
	if companyID == "" || id == "" {
		return fmt.Errorf("docstore: company id and document id are required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1 AND company_id = $2 AND collection = $3`,
		id, companyID, collection)
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.invalidate(companyID, collection)
	return nil
}

func (s *PostgresStore) BatchAddDocuments(ctx context.Context, companyID, collection string, docs []Document, batchSize int) ([]string, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("docstore: company id is required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		chunk := docs[start:end]

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return ids, fmt.Errorf("docstore: begin batch: %w", err)
		}
		for _, doc := range chunk {
			id := s.nextID(collection)
			raw, err := encodeDoc(doc)
			if err != nil {
				_ = tx.Rollback()
				return ids, err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO documents (id, company_id, collection, data) VALUES ($1, $2, $3, $4)`,
				id, companyID, collection, raw); err != nil {
				_ = tx.Rollback()
				return ids, fmt.Errorf("docstore: batch insert %s: %w", collection, err)
			}
			ids = append(ids, id)
		}
		if err := tx.Commit(); err != nil {
			return ids, fmt.Errorf("docstore: commit batch: %w", err)
		}
	}
	s.invalidate(companyID, collection)
	return ids, nil
}

func (s *PostgresStore) invalidate(companyID, collection string) {
	if collection == CollectionFields {
		s.fieldCache.Remove(companyID)
	}
}

func (s *PostgresStore) nextID(collection string) string {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%d-%d", collection, time.Now().UnixNano(), s.seq)
}

func encodeDoc(doc Document) ([]byte, error) {
	clean := make(Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	return raw, nil
}

func cloneDocs(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		c := make(Document, len(d))
		for k, v := range d {
			c[k] = v
		}
		out[i] = c
	}
	return out
}
