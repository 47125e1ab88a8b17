package schemes

import (
	"context"
	"errors"

	"github.com/wonny/scamdunk/internal/contracts"
)

// ErrNotFound is returned when a scheme id does not exist
var ErrNotFound = errors.New("scheme not found")

// Store loads and saves the whole scheme database.
// Concurrent writers are not coordinated: the last Save wins.
type Store interface {
	Load(ctx context.Context) (*contracts.SchemeDatabase, error)
	Save(ctx context.Context, db *contracts.SchemeDatabase, runID string) error
}

// Get loads the database and returns one record
func Get(ctx context.Context, store Store, id string) (*contracts.SchemeRecord, error) {
	db, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := db.Schemes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}
