package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	apperrors "rigforge/internal/errors"
	"rigforge/internal/logger"
	"rigforge/internal/models"
)

// Store loads catalog snapshots from the parts table and serves the
// most recent one. Reads are lock-free; Refresh swaps the pointer.
type Store struct {
	db       *gorm.DB
	snapshot atomic.Pointer[Snapshot]
}

// NewStore creates a Store with an empty snapshot. Call Refresh before
// serving traffic.
func NewStore(db *gorm.DB) *Store {
	s := &Store{db: db}
	s.snapshot.Store(NewSnapshot(nil))
	return s
}

// Snapshot returns the current catalog snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Refresh reloads the whole parts table and atomically replaces the
// served snapshot. In-flight readers keep the snapshot they started
// with.
func (s *Store) Refresh(ctx context.Context) error {
	var parts []models.Part
	if err := s.db.WithContext(ctx).Order("id").Find(&parts).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.snapshot.Store(NewSnapshot(parts))
	logger.Get().Infow("catalog snapshot refreshed", "parts", len(parts))
	return nil
}

// StartRefresher reloads the catalog every interval until ctx is
// cancelled. A failed reload keeps the previous snapshot and is
// retried on the next tick.
func (s *Store) StartRefresher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					logger.Get().Errorw("catalog refresh failed", "error", err)
				}
			}
		}
	}()
}
