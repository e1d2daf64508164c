package docstore

import (
	"log"
	"os"
	"strings"
)

// NewFromEnv returns a Postgres-backed store when DOCSTORE_PG_DSN is set and
// reachable, otherwise an in-memory store.
func NewFromEnv() Store {
	dsn := strings.TrimSpace(os.Getenv("DOCSTORE_PG_DSN"))
	if dsn == "" {
		return NewMemoryStore()
	}
	s, err := NewPostgresStore(dsn)
	if err != nil {
		log.Printf("docstore: postgres unavailable (%v), falling back to memory store", err)
		return NewMemoryStore()
	}
	return s
}
