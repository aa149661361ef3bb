package services

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "rigforge/internal/errors"
	"rigforge/internal/logger"
	"rigforge/internal/models"
	"rigforge/internal/uuid"
)

// buildService is the build ledger. Every operation keeps two tables
// in step: builds (one row per build, keyed by build_id) and
// build_indexes (one row per user, listing their build ids). The two
// are linked only by this code — each write is a single atomic row
// statement, and there is no cross-row transaction, so a failure
// between the two steps of create/delete leaves a detectable
// inconsistency that is reported, never hidden.
type buildService struct {
	db *gorm.DB
}

// NewBuildService creates a new BuildServicer.
func NewBuildService(db *gorm.DB) BuildServicer {
	return &buildService{db: db}
}

// CreateBuild persists a generated build under the given user and
// records its id in the user's build index. If the build row is
// written but the index write fails, the build is returned together
// with ErrBuildIndexInconsistent: the build exists (orphaned) and the
// caller decides whether to compensate.
func (s *buildService) CreateBuild(ctx context.Context, build *models.Build, userID string) (*models.Build, error) {
	components := build.ComponentMap()
	if !components.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "build must have all seven components at positive prices")
	}
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user id is required")
	}

	if build.BuildID == "" {
		build.BuildID = uuid.New()
	}
	build.UserID = userID
	build.SetComponents(components)

	if err := s.db.WithContext(ctx).Create(build).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("build created", "build_id", build.BuildID, "user_id", userID)

	if err := s.appendToIndex(ctx, userID, build.BuildID); err != nil {
		logger.Get().Errorw("build written but index update failed",
			"build_id", build.BuildID, "user_id", userID, "error", err)
		return build, apperrors.Wrap(apperrors.ErrBuildIndexInconsistent, err)
	}
	return build, nil
}

// appendToIndex adds buildID to the user's index row, creating the row
// with a singleton list for a user's first build.
func (s *buildService) appendToIndex(ctx context.Context, userID, buildID string) error {
	var index models.BuildIndex
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&index).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		index = models.BuildIndex{
			UserID:           userID,
			CreatedBuildList: datatypes.NewJSONSlice([]string{buildID}),
		}
		return s.db.WithContext(ctx).Create(&index).Error
	case err != nil:
		return err
	}

	list := append([]string(index.CreatedBuildList), buildID)
	return s.db.WithContext(ctx).Model(&models.BuildIndex{}).
		Where("user_id = ?", userID).
		Update("created_build_list", datatypes.NewJSONSlice(list)).Error
}

// GetUserBuilds returns the user's builds in index order. A user with
// no index row has no builds: empty slice, not an error. An index
// entry whose build row is missing (the create-path orphan gap in
// reverse) is skipped with a warning.
func (s *buildService) GetUserBuilds(ctx context.Context, userID string) ([]models.Build, error) {
	var index models.BuildIndex
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Build{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	builds := make([]models.Build, 0, len(index.CreatedBuildList))
	for _, buildID := range index.CreatedBuildList {
		var build models.Build
		err := s.db.WithContext(ctx).Where("build_id = ?", buildID).First(&build).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Warnw("build index references missing build; skipping",
				"build_id", buildID, "user_id", userID)
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		builds = append(builds, build)
	}
	return builds, nil
}

// GetBuildByID fetches one build document.
func (s *buildService) GetBuildByID(ctx context.Context, buildID string) (*models.Build, error) {
	var build models.Build
	if err := s.db.WithContext(ctx).Where("build_id = ?", buildID).First(&build).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBuildNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &build, nil
}

// EditComponent swaps one slot's part for another and re-derives the
// overall price: new overall = old overall - old slot price + new
// price. The slot and overall_price land in a single row update.
func (s *buildService) EditComponent(ctx context.Context, buildID string, slot models.Slot, newName string, newPrice float64) (*models.Build, error) {
	if !models.ValidSlot(slot) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidComponent, "Unrecognized component slot: "+string(slot))
	}
	if newName == "" || newPrice <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "component name and a positive price are required")
	}

	build, err := s.GetBuildByID(ctx, buildID)
	if err != nil {
		return nil, err
	}

	components := build.ComponentMap()
	old, ok := components[slot]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidComponent, "Build has no "+string(slot)+" component")
	}

	newOverall := build.OverallPrice - old.Price + newPrice
	components[slot] = models.Component{Name: newName, Price: newPrice}

	err = s.db.WithContext(ctx).Model(&models.Build{}).
		Where("build_id = ?", buildID).
		Updates(map[string]interface{}{
			"components":    datatypes.NewJSONType(components),
			"overall_price": newOverall,
		}).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("build component updated", "build_id", buildID, "slot", slot)

	build.SetComponents(components)
	return build, nil
}

// ReplaceBuild upserts a full build document: replaced if the id
// exists, inserted otherwise. Both paths are success; only a storage
// error fails.
func (s *buildService) ReplaceBuild(ctx context.Context, buildID, userID string, components models.ComponentMap) (*models.Build, error) {
	if buildID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "build id is required")
	}
	if !components.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "build must have all seven components at positive prices")
	}

	build := &models.Build{BuildID: buildID, UserID: userID}
	build.SetComponents(components)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "build_id"}},
		UpdateAll: true,
	}).Create(build).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("build replaced", "build_id", buildID)
	return build, nil
}

// DeleteBuild removes a build row and pulls its id from the owner's
// index. No matching build is BUILD_NOT_FOUND and leaves the index
// untouched. If the build row was deleted but the index pull changed
// nothing, the user-visible state did change, so that case surfaces as
// ErrBuildIndexInconsistent rather than a failure.
func (s *buildService) DeleteBuild(ctx context.Context, buildID, userID string) error {
	res := s.db.WithContext(ctx).Where("build_id = ?", buildID).Delete(&models.Build{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBuildNotFound
	}
	logger.Get().Infow("build deleted", "build_id", buildID, "user_id", userID)

	removed, err := s.pullFromIndex(ctx, userID, buildID)
	if err != nil {
		logger.Get().Errorw("build deleted but index pull failed",
			"build_id", buildID, "user_id", userID, "error", err)
		return apperrors.Wrap(apperrors.ErrBuildIndexInconsistent, err)
	}
	if !removed {
		logger.Get().Warnw("build deleted but index did not reference it",
			"build_id", buildID, "user_id", userID)
		return apperrors.ErrBuildIndexInconsistent
	}
	return nil
}

// pullFromIndex removes buildID from the user's index list, reporting
// whether the list actually changed.
func (s *buildService) pullFromIndex(ctx context.Context, userID, buildID string) (bool, error) {
	var index models.BuildIndex
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	list := make([]string, 0, len(index.CreatedBuildList))
	found := false
	for _, id := range index.CreatedBuildList {
		if id == buildID {
			found = true
			continue
		}
		list = append(list, id)
	}
	if !found {
		return false, nil
	}

	err := s.db.WithContext(ctx).Model(&models.BuildIndex{}).
		Where("user_id = ?", userID).
		Update("created_build_list", datatypes.NewJSONSlice(list)).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// CascadeDeleteAccount removes the user's account record, then every
// build its index lists, then the index row itself. A user with no
// index row simply had no builds; that is success.
func (s *buildService) CascadeDeleteAccount(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	logger.Get().Infow("account deleted", "user_id", userID)

	var index models.BuildIndex
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(index.CreatedBuildList) > 0 {
		err := s.db.WithContext(ctx).
			Where("build_id IN ?", []string(index.CreatedBuildList)).
			Delete(&models.Build{}).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("cascade deleted builds", "user_id", userID, "count", len(index.CreatedBuildList))
	}

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.BuildIndex{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
