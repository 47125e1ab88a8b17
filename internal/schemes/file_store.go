package schemes

import (
	"context"
	"fmt"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/pkg/jsonfile"
)

// FileStore keeps the database as one JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty database.
func (s *FileStore) Load(_ context.Context) (*contracts.SchemeDatabase, error) {
	db := contracts.NewSchemeDatabase()
	if _, err := jsonfile.Read(s.path, db); err != nil {
		return nil, fmt.Errorf("load scheme database: %w", err)
	}
	if db.Schemes == nil {
		db.Schemes = make(map[string]*contracts.SchemeRecord)
	}
	return db, nil
}

// Save writes the document through a temp file and rename
func (s *FileStore) Save(_ context.Context, db *contracts.SchemeDatabase, _ string) error {
	if err := jsonfile.Write(s.path, db); err != nil {
		return fmt.Errorf("save scheme database: %w", err)
	}
	return nil
}
