package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"rigforge/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique
// username/email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, false)
}

// CreateTestAdmin creates a user with the admin flag set.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, true)
}

func createUser(t *testing.T, db *gorm.DB, admin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		FirstName: "Test",
		Surname:   fmt.Sprintf("User%d", n),
		Username:  fmt.Sprintf("user%d", n),
		Email:     fmt.Sprintf("user%d@test.com", n),
		Password:  string(hash),
		Admin:     admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPart inserts one catalog row.
func CreateTestPart(t *testing.T, db *gorm.DB, partType models.Category, price float64) *models.Part {
	t.Helper()

	part := &models.Part{
		Type:  partType,
		Name:  fmt.Sprintf("Test %s %d", partType, nextID()),
		Price: price,
	}
	if err := db.Create(part).Error; err != nil {
		t.Fatalf("failed to create test part: %v", err)
	}
	return part
}

// SeedCatalogForBudget inserts one part per catalog type priced exactly
// at the tier sub-budget for the given budget and ratios, so every
// slot's tolerance band has at least one candidate.
func SeedCatalogForBudget(t *testing.T, db *gorm.DB, budget float64, ratios map[models.Slot]float64) {
	t.Helper()

	for slot, ratio := range ratios {
		target := budget * ratio
		if slot == models.SlotStorage {
			CreateTestPart(t, db, models.CategorySSD, target)
			CreateTestPart(t, db, models.CategoryHDD, target)
			continue
		}
		CreateTestPart(t, db, models.Category(slot), target)
	}
}

// TestComponentMap returns a valid seven-slot component map whose
// prices sum to 700.
func TestComponentMap() models.ComponentMap {
	return models.ComponentMap{
		models.SlotCPU:         {Name: "Ryzen 5 7600", Price: 180},
		models.SlotGPU:         {Name: "RTX 4060", Price: 280},
		models.SlotRAM:         {Name: "32GB DDR5", Price: 90},
		models.SlotStorage:     {Name: "1TB NVMe SSD", Price: 65},
		models.SlotMotherboard: {Name: "B650 Tomahawk", Price: 50},
		models.SlotPowerSupply: {Name: "650W Gold", Price: 20},
		models.SlotCase:        {Name: "Mid Tower", Price: 15},
	}
}

// CreateTestBuild inserts a build document directly (bypassing the
// ledger) for tests that need a pre-existing row.
func CreateTestBuild(t *testing.T, db *gorm.DB, userID string) *models.Build {
	t.Helper()

	build := &models.Build{
		BuildID: fmt.Sprintf("00000000-0000-7000-8000-%012d", nextID()),
		UserID:  userID,
	}
	build.SetComponents(TestComponentMap())
	if err := db.Create(build).Error; err != nil {
		t.Fatalf("failed to create test build: %v", err)
	}
	return build
}
