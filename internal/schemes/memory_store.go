package schemes

import (
	"context"
	"sync"

	"github.com/wonny/scamdunk/internal/contracts"
)

// MemoryStore keeps a deep copy of the database in memory
type MemoryStore struct {
	mu sync.RWMutex
	db *contracts.SchemeDatabase
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{db: contracts.NewSchemeDatabase()}
}

// Load returns a copy of the stored database
func (s *MemoryStore) Load(_ context.Context) (*contracts.SchemeDatabase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDatabase(s.db), nil
}

// Save replaces the stored database with a copy of db
func (s *MemoryStore) Save(_ context.Context, db *contracts.SchemeDatabase, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = cloneDatabase(db)
	return nil
}

func cloneDatabase(db *contracts.SchemeDatabase) *contracts.SchemeDatabase {
	out := *db
	out.Schemes = make(map[string]*contracts.SchemeRecord, len(db.Schemes))
	for id, rec := range db.Schemes {
		out.Schemes[id] = rec.Clone()
	}
	return &out
}
