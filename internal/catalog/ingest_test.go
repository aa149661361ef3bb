package catalog

import (
	"context"
	"strings"
	"testing"

	"rigforge/internal/models"
	"rigforge/internal/testutil"
)

func TestImportCSVHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	csvData := `type,name,price
CPU,Ryzen 5 7600,180.00
GPU,RTX 4060,289.99
SSD,1TB NVMe,65.50
`
	result, err := ImportCSV(context.Background(), db, strings.NewReader(csvData))
	testutil.AssertNoError(t, err)

	if result.Imported != 3 {
		t.Errorf("expected 3 imported, got %d", result.Imported)
	}
	if result.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", result.Skipped)
	}

	var parts []models.Part
	testutil.AssertNoError(t, db.Order("id").Find(&parts).Error)
	if len(parts) != 3 {
		t.Fatalf("expected 3 rows in parts table, got %d", len(parts))
	}
	if parts[1].Type != models.CategoryGPU || parts[1].Price != 289.99 {
		t.Errorf("unexpected second row: %+v", parts[1])
	}
}

func TestImportCSVSkipsMalformedRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	csvData := `CPU,Good CPU,180
Toaster,Not A Part,50
GPU,,300
RAM,Free RAM,0
SSD,Negative SSD,-10
HDD,Word Price,cheap
Case,Good Case,45
`
	result, err := ImportCSV(context.Background(), db, strings.NewReader(csvData))
	testutil.AssertNoError(t, err)

	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if result.Skipped != 5 {
		t.Errorf("expected 5 skipped, got %d", result.Skipped)
	}
}

func TestImportCSVReplacesExistingCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.CreateTestPart(t, db, models.CategoryCPU, 500)
	testutil.CreateTestPart(t, db, models.CategoryGPU, 900)

	result, err := ImportCSV(context.Background(), db, strings.NewReader("RAM,Fresh RAM,90\n"))
	testutil.AssertNoError(t, err)
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}

	var parts []models.Part
	testutil.AssertNoError(t, db.Find(&parts).Error)
	if len(parts) != 1 || parts[0].Name != "Fresh RAM" {
		t.Errorf("expected old catalog replaced by single new row, got %+v", parts)
	}
}

func TestImportCSVEmptyInputClearsCatalog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.CreateTestPart(t, db, models.CategoryCPU, 200)

	result, err := ImportCSV(context.Background(), db, strings.NewReader(""))
	testutil.AssertNoError(t, err)
	if result.Imported != 0 || result.Skipped != 0 {
		t.Errorf("unexpected result for empty input: %+v", result)
	}

	var count int64
	testutil.AssertNoError(t, db.Model(&models.Part{}).Count(&count).Error)
	if count != 0 {
		t.Errorf("expected catalog cleared, found %d rows", count)
	}
}
