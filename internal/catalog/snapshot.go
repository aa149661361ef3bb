// Package catalog holds the in-memory parts catalog consumed by build
// generation. The catalog is loaded wholesale from the parts table,
// kept immutable while in use, and swapped atomically on refresh, so
// concurrent selections read it without locking.
package catalog

import (
	"time"

	"rigforge/internal/models"
)

// Snapshot is one immutable load of the parts catalog.
type Snapshot struct {
	parts    []models.Part
	byType   map[models.Category][]models.Part
	loadedAt time.Time
}

// NewSnapshot groups the given parts by catalog type. The slice is not
// copied; callers hand over ownership.
func NewSnapshot(parts []models.Part) *Snapshot {
	byType := make(map[models.Category][]models.Part)
	for _, p := range parts {
		byType[p.Type] = append(byType[p.Type], p)
	}
	return &Snapshot{
		parts:    parts,
		byType:   byType,
		loadedAt: time.Now(),
	}
}

// Len returns the total number of catalog entries.
func (s *Snapshot) Len() int { return len(s.parts) }

// LoadedAt returns when this snapshot was taken.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// PartsByType returns all entries of the given catalog type.
func (s *Snapshot) PartsByType(t models.Category) []models.Part {
	return s.byType[t]
}

// PartsInBand returns the entries of the given type whose price lies
// within ±tolerancePct of target, inclusive on both bounds.
func (s *Snapshot) PartsInBand(t models.Category, target, tolerancePct float64) []models.Part {
	lower := target - target*tolerancePct/100
	upper := target + target*tolerancePct/100

	var matches []models.Part
	for _, p := range s.byType[t] {
		if p.Price >= lower && p.Price <= upper {
			matches = append(matches, p)
		}
	}
	return matches
}
