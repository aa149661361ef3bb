package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "rigforge/internal/errors"
	"rigforge/internal/models"
)

// adminUserListCap bounds the admin user listing.
const adminUserListCap = 500

// adminService handles admin reporting.
type adminService struct {
	db *gorm.DB
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(db *gorm.DB) AdminServicer {
	return &adminService{db: db}
}

// GetStats returns row counts across the stored collections.
func (s *adminService) GetStats(ctx context.Context) (*AppStats, error) {
	stats := &AppStats{}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.NumUsers},
		{&models.Build{}, &stats.NumBuilds},
		{&models.Part{}, &stats.NumParts},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return stats, nil
}

// ListUsers returns every account's username and registration date,
// oldest first.
func (s *adminService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at").
		Limit(adminUserListCap).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, UserSummary{
			Username:         u.Username,
			RegistrationDate: u.CreatedAt,
		})
	}
	return summaries, nil
}
