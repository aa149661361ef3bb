package main

import (
	"context"
	"fmt"
	"os"

	"rigforge/internal/catalog"
	"rigforge/internal/database"
	"rigforge/internal/logger"
)

// ingest bulk-replaces the parts catalog from a CSV export of the
// scrape pipeline: one type,name,price row per part.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Ingest error: %v", err)
	}
}

func run() error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: ingest <parts.csv>")
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	result, err := catalog.ImportCSV(context.Background(), dbManager.DB(), file)
	if err != nil {
		return fmt.Errorf("catalog import failed: %w", err)
	}

	logger.Get().Infow("catalog import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return nil
}
