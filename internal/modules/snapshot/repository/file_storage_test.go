package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestFileStorageTakeConsumesOnce(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	permissions := domain.AllowAll()
	permissions.CanSendPolls = false

	err := storage.SaveSnapshot(ctx, &domain.Snapshot{
		ChatID:      100,
		UserID:      7,
		Permissions: permissions,
		TakenAt:     time.Now(),
	}, time.Hour)
	require.NoError(t, err)

	snapshot, err := storage.TakeSnapshot(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snapshot.ChatID)
	assert.Equal(t, int64(7), snapshot.UserID)
	assert.Equal(t, permissions, snapshot.Permissions)

	// Single consumption: a second take must miss.
	_, err = storage.TakeSnapshot(ctx, 100, 7)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFileStorageTakeUnknownKey(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.TakeSnapshot(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFileStorageSaveOverwrites(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := domain.AllowAll()
	second := domain.AllowAll()
	second.CanPinMessages = false

	require.NoError(t, storage.SaveSnapshot(ctx, &domain.Snapshot{ChatID: 100, UserID: 7, Permissions: first}, time.Hour))
	require.NoError(t, storage.SaveSnapshot(ctx, &domain.Snapshot{ChatID: 100, UserID: 7, Permissions: second}, time.Hour))

	snapshot, err := storage.TakeSnapshot(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, second, snapshot.Permissions)
}

func TestFileStorageTakeExpired(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveSnapshot(ctx, &domain.Snapshot{ChatID: 100, UserID: 7, Permissions: domain.AllowAll()}, 30*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, err := storage.TakeSnapshot(ctx, 100, 7)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFileStorageSweepExpired(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveSnapshot(ctx, &domain.Snapshot{ChatID: 100, UserID: 7, Permissions: domain.AllowAll()}, 30*time.Millisecond))
	require.NoError(t, storage.SaveSnapshot(ctx, &domain.Snapshot{ChatID: 100, UserID: 8, Permissions: domain.AllowAll()}, time.Hour))
	time.Sleep(50 * time.Millisecond)

	removed, err := storage.SweepExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The live entry survives the sweep.
	_, err = storage.TakeSnapshot(ctx, 100, 8)
	assert.NoError(t, err)
}
