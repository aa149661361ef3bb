package services

import (
	"context"
	"time"

	"rigforge/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, firstName, surname, username, email, password string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// BuildServicer defines the contract for the build ledger: the
// operations that keep the builds table and the per-user build index
// consistent with each other.
type BuildServicer interface {
	CreateBuild(ctx context.Context, build *models.Build, userID string) (*models.Build, error)
	GetUserBuilds(ctx context.Context, userID string) ([]models.Build, error)
	GetBuildByID(ctx context.Context, buildID string) (*models.Build, error)
	EditComponent(ctx context.Context, buildID string, slot models.Slot, newName string, newPrice float64) (*models.Build, error)
	ReplaceBuild(ctx context.Context, buildID, userID string, components models.ComponentMap) (*models.Build, error)
	DeleteBuild(ctx context.Context, buildID, userID string) error
	CascadeDeleteAccount(ctx context.Context, userID string) error
}

// AppStats is the admin overview of stored data.
type AppStats struct {
	NumUsers  int64 `json:"num_users"`
	NumBuilds int64 `json:"num_builds"`
	NumParts  int64 `json:"num_parts"`
}

// UserSummary is the admin listing entry for one account.
type UserSummary struct {
	Username         string    `json:"username"`
	RegistrationDate time.Time `json:"registration_date"`
}

// AdminServicer defines the contract for admin reporting.
type AdminServicer interface {
	GetStats(ctx context.Context) (*AppStats, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
}
