package progress

import (
	"context"

	"github.com/certprep/backend/internal/models"
)

// Backend persists saved tests for many users. Store binds one user to it.
type Backend interface {
	Load(ctx context.Context, userID int64) ([]models.SavedTest, error)
	Put(ctx context.Context, userID int64, rec models.SavedTest) error
	Remove(ctx context.Context, userID int64, ids ...string) error
	Clear(ctx context.Context, userID int64) error

	// Synced reports whether records written here are stored remotely.
	Synced() bool
}

// recordGetter is implemented by backends that can fetch one record without
// loading the whole collection.
type recordGetter interface {
	Get(ctx context.Context, userID int64, id string) (*models.SavedTest, error)
}
