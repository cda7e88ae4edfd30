package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/samber/oops"
)

// FileStorage implements snapshot.Repository using the file system, one JSON
// file per (chat_id, user_id) key.
type FileStorage struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStorage creates a new file-based snapshot repository.
func NewFileStorage(basePath string) (*FileStorage, error) {
	snapshotPath := filepath.Join(basePath, "snapshots")
	if err := os.MkdirAll(snapshotPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create snapshots directory").Wrap(err)
	}

	return &FileStorage{basePath: snapshotPath}, nil
}

func (s *FileStorage) SaveSnapshot(_ context.Context, snapshot *domain.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.ExpiresAt = time.Now().Add(ttl)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return oops.With("chat_id", snapshot.ChatID, "user_id", snapshot.UserID, "context", "failed to marshal snapshot").Wrap(err)
	}

	path := s.keyPath(snapshot.ChatID, snapshot.UserID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("path", path, "context", "failed to write snapshot").Wrap(err)
	}

	return nil
}

func (s *FileStorage) TakeSnapshot(_ context.Context, chatID, userID int64) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyPath(chatID, userID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, oops.With("path", path, "context", "failed to read snapshot").Wrap(err)
	}

	// Remove before decoding so a second caller never sees the entry.
	if err := os.Remove(path); err != nil {
		return nil, oops.With("path", path, "context", "failed to remove snapshot").Wrap(err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, oops.With("path", path, "context", "failed to unmarshal snapshot").Wrap(err)
	}

	if snapshot.Expired(time.Now()) {
		return nil, ErrSnapshotNotFound
	}

	return &snapshot, nil
}

func (s *FileStorage) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, oops.With("directory", s.basePath, "context", "failed to read snapshots directory").Wrap(err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.basePath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var snapshot domain.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			// Unreadable entries are dropped so they cannot pile up.
			_ = os.Remove(path)
			removed++
			continue
		}

		if snapshot.Expired(now) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}

func (s *FileStorage) keyPath(chatID, userID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d_%d.json", chatID, userID))
}
