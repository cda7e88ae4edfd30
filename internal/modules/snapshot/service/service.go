package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/rossnomann/terminator/internal/modules/snapshot/repository"
)

// Service owns the permission snapshot store: it applies the configured
// lifetime on writes and runs the background sweep that evicts entries even
// when they were never consumed.
type Service struct {
	repo          repository.Repository
	lifetime      time.Duration
	sweepInterval time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// New creates a new snapshot service.
func New(repo repository.Repository, lifetime, sweepInterval time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:          repo,
		lifetime:      lifetime,
		sweepInterval: sweepInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Put stores a member's pre-restriction permissions, overwriting any prior
// entry for the same key.
func (s *Service) Put(ctx context.Context, chatID, userID int64, permissions domain.Permissions) error {
	snapshot := &domain.Snapshot{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: permissions,
		TakenAt:     time.Now(),
	}
	return s.repo.SaveSnapshot(ctx, snapshot, s.lifetime)
}

// Take removes and returns the stored permissions for the key. It returns
// repository.ErrSnapshotNotFound when there is no live entry.
func (s *Service) Take(ctx context.Context, chatID, userID int64) (domain.Permissions, error) {
	snapshot, err := s.repo.TakeSnapshot(ctx, chatID, userID)
	if err != nil {
		return domain.Permissions{}, err
	}
	return snapshot.Permissions, nil
}

// Start launches the background sweep loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := s.repo.SweepExpired(s.ctx, now)
			if err != nil {
				slog.Warn("Snapshot sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("Swept expired snapshots", "removed", removed)
			}
		}
	}
}
