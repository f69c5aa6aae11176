package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"autohome-scraper/config"
	"autohome-scraper/models"
	"autohome-scraper/scraper/autohome"
	"autohome-scraper/services"
	"autohome-scraper/storage"
	"autohome-scraper/utils"
)

const (
	targetCount = 500
	outputDir   = "."
	logFile     = "autohome_sales_scraper.log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load(config.Defaults{
		TargetCount: targetCount,
		OutputDir:   outputDir,
		LogFile:     logFile,
	})

	logger, err := utils.NewFileLogger(cfg.LogFile)
	if err != nil {
		logger = utils.NewLogger()
		logger.Warn("Log file unavailable, logging to stdout only: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Autohome sales ranking scraper starting (target %d) ===", cfg.TargetCount)
	defer logger.Info("=== Autohome sales ranking scraper finished ===")

	session, err := autohome.NewSession(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		return 1
	}
	defer session.Close()

	scraper := autohome.NewSalesScraper(session, cfg, logger, time.Now)
	outcome, err := scraper.Scrape(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Interrupted, keeping %d records collected so far", len(outcome.Records))
	} else if err != nil {
		logger.Error("Sales scrape failed: %v", err)
	}

	records := services.NewCleaner(logger).FinalizeSales(outcome.Records, cfg.TargetCount)
	if len(records) == 0 {
		logger.Error("No sales records were scraped")
		return 1
	}

	runID := models.NewRunID()
	path := filepath.Join(cfg.OutputDir, storage.SalesFilename(storage.RunStamp(time.Now())))
	if err := storage.SaveSales(path, records); err != nil {
		logger.Error("CSV write failed: %v", err)
		return 1
	}
	logger.Info("Saved %d records to %s", len(records), path)

	if cfg.PostgresEnabled {
		records = mirrorToPostgres(cfg, logger, runID, records)
	}

	insights := services.NewInsightService(logger)
	if err := insights.RenderSales(os.Stdout, insights.SalesSummary(runID, records)); err != nil {
		logger.Warn("Summary output failed: %v", err)
	}
	return 0
}

// mirrorToPostgres stores the ranking and returns it as read back from the
// database. Any failure leaves records unchanged.
func mirrorToPostgres(cfg *config.Config, logger *utils.Logger, runID string, records []models.SalesRecord) []models.SalesRecord {
	pg, err := storage.NewPostgresWriter(cfg.DSN(), cfg.MaxRetries)
	if err != nil {
		logger.Warn("PostgreSQL unavailable, skipping: %v", err)
		return records
	}
	defer pg.Close()

	if err := pg.WriteSales(runID, records); err != nil {
		logger.Warn("PostgreSQL write failed: %v", err)
		return records
	}
	stored, err := pg.FetchSales(runID)
	if err != nil || len(stored) == 0 {
		logger.Warn("PostgreSQL read-back failed: %v", err)
		return records
	}
	logger.Info("Stored %d rankings in PostgreSQL (run %s)", len(stored), runID)
	return stored
}
