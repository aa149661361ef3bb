package models

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is one of the seven fixed component positions in a build.
type Slot string

const (
	SlotCPU         Slot = "CPU"
	SlotGPU         Slot = "GPU"
	SlotRAM         Slot = "RAM"
	SlotStorage     Slot = "Storage"
	SlotMotherboard Slot = "Motherboard"
	SlotPowerSupply Slot = "PowerSupply"
	SlotCase        Slot = "Case"
)

// Slots returns the seven build slots in display order.
func Slots() []Slot {
	return []Slot{
		SlotCPU, SlotGPU, SlotRAM, SlotStorage,
		SlotMotherboard, SlotPowerSupply, SlotCase,
	}
}

// ValidSlot reports whether s names a recognized component slot.
func ValidSlot(s Slot) bool {
	for _, known := range Slots() {
		if s == known {
			return true
		}
	}
	return false
}

// Component is one selected part inside a build document.
type Component struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ComponentMap is the body of a build document: slot -> selected part.
type ComponentMap map[Slot]Component

// OverallPrice returns the sum of all component prices. The build's
// stored overall_price must always equal this sum; it is recomputed on
// every mutation, never adjusted independently.
func (m ComponentMap) OverallPrice() float64 {
	var total float64
	for _, c := range m {
		total += c.Price
	}
	return total
}

// Valid reports whether all seven slots are populated with a named
// component at a strictly positive price.
func (m ComponentMap) Valid() bool {
	for _, slot := range Slots() {
		c, ok := m[slot]
		if !ok || c.Name == "" || c.Price <= 0 {
			return false
		}
	}
	return true
}

// Build is one build document, keyed by build_id. The component map is
// stored as a single JSON column so every mutation is one single-row
// statement (the store's per-document atomicity unit).
type Build struct {
	BuildID      string                           `gorm:"type:uuid;primaryKey;column:build_id" json:"build_id"`
	UserID       string                           `gorm:"type:uuid;index;not null" json:"user_id"`
	Components   datatypes.JSONType[ComponentMap] `json:"components"`
	OverallPrice float64                          `gorm:"not null" json:"overall_price"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

// ComponentMap unpacks the JSON document body.
func (b *Build) ComponentMap() ComponentMap {
	return b.Components.Data()
}

// SetComponents replaces the document body and recomputes overall_price.
func (b *Build) SetComponents(m ComponentMap) {
	b.Components = datatypes.NewJSONType(m)
	b.OverallPrice = m.OverallPrice()
}

// BuildIndex is the denormalized per-user index: one row per user who
// has created at least one build, listing their build IDs in creation
// order. Consistency with the builds table is maintained only by the
// ledger's dual-write/dual-delete logic; there is no foreign key.
type BuildIndex struct {
	UserID           string                      `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedBuildList datatypes.JSONSlice[string] `json:"created_build_list"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// TableName keeps the collection-style plural used by the original
// data layout.
func (BuildIndex) TableName() string { return "build_indexes" }
