package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	apperrors "rigforge/internal/errors"
	"rigforge/internal/logger"
	"rigforge/internal/models"
)

// ImportResult summarizes one catalog import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCSV bulk-replaces the parts table from CSV rows of the form
// type,name,price. Malformed rows (unknown type, non-numeric or
// non-positive price) are skipped here, at ingest time — selection
// never has to defend against them. An optional header row is
// detected and ignored.
func ImportCSV(ctx context.Context, db *gorm.DB, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	result := &ImportResult{}
	var parts []models.Part

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Get().Warnw("skipping unreadable catalog row", "line", line, "error", err)
			result.Skipped++
			continue
		}

		if line == 1 && strings.EqualFold(record[0], "type") {
			continue
		}

		partType := models.Category(strings.TrimSpace(record[0]))
		name := strings.TrimSpace(record[1])
		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)

		switch {
		case !models.ValidCategory(partType):
			logger.Get().Warnw("skipping catalog row with unknown part type", "line", line, "type", record[0])
			result.Skipped++
			continue
		case name == "":
			logger.Get().Warnw("skipping catalog row with empty name", "line", line)
			result.Skipped++
			continue
		case err != nil || price <= 0:
			logger.Get().Warnw("skipping catalog row with invalid price", "line", line, "price", record[2])
			result.Skipped++
			continue
		}

		parts = append(parts, models.Part{Type: partType, Name: name, Price: price})
	}

	// Whole-table replace so a reload never serves a half-imported
	// catalog.
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Part{}).Error; err != nil {
			return err
		}
		if len(parts) == 0 {
			return nil
		}
		return tx.CreateInBatches(parts, 500).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result.Imported = len(parts)
	return result, nil
}
