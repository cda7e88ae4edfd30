package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rossnomann/terminator/internal/modules/snapshot/domain"
)

// ErrSnapshotNotFound is returned by TakeSnapshot when there is no live
// snapshot for the key. An expired entry counts as not found.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Repository defines the interface for permission snapshot persistence.
type Repository interface {
	// SaveSnapshot stores a snapshot, overwriting any prior entry for the
	// same (chat_id, user_id) key.
	SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot, ttl time.Duration) error
	// TakeSnapshot removes and returns the snapshot for the key. The
	// removal is atomic: no two concurrent callers observe the same entry.
	TakeSnapshot(ctx context.Context, chatID, userID int64) (*domain.Snapshot, error)
	// SweepExpired deletes entries whose lifetime elapsed and returns how
	// many were removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
