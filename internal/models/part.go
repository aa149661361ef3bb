package models

// Category is the catalog-level part type. Storage is split into SSD
// and HDD at catalog level; build slots collapse both into Storage.
type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryGPU         Category = "GPU"
	CategoryRAM         Category = "RAM"
	CategorySSD         Category = "SSD"
	CategoryHDD         Category = "HDD"
	CategoryMotherboard Category = "Motherboard"
	CategoryPowerSupply Category = "PowerSupply"
	CategoryCase        Category = "Case"
)

// Categories lists every valid catalog part type.
func Categories() []Category {
	return []Category{
		CategoryCPU, CategoryGPU, CategoryRAM, CategorySSD, CategoryHDD,
		CategoryMotherboard, CategoryPowerSupply, CategoryCase,
	}
}

// ValidCategory reports whether c is a recognized catalog part type.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Part is one row of the parts catalog. The catalog is read-mostly:
// bulk-replaced by the ingest pipeline and only ever read at request
// time, so rows carry no update bookkeeping.
type Part struct {
	ID    uint     `gorm:"primaryKey" json:"-"`
	Type  Category `gorm:"size:20;index;not null" json:"type"`
	Name  string   `gorm:"not null" json:"name"`
	Price float64  `gorm:"not null" json:"price"`
}
