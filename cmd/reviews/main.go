package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autohome-scraper/config"
	"autohome-scraper/scraper/autohome"
	"autohome-scraper/services"
	"autohome-scraper/storage"
	"autohome-scraper/utils"
)

const (
	inputCSV  = "autohome_sales_ranking_id.csv"
	maxPages  = 25
	outputDir = "autohome_reviews_output"
	logFile   = "autohome_scraper.log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load(config.Defaults{
		InputCSV:  inputCSV,
		MaxPages:  maxPages,
		OutputDir: outputDir,
		LogFile:   logFile,
	})

	logger, err := utils.NewFileLogger(cfg.LogFile)
	if err != nil {
		logger = utils.NewLogger()
		logger.Warn("Log file unavailable, logging to stdout only: %v", err)
	}
	defer logger.Close()

	logger.Info("=== Autohome review scraper starting ===")
	logger.Info("Input: %s | output: %s | max pages per vehicle: %d", cfg.InputCSV, cfg.OutputDir, cfg.MaxPages)
	defer logger.Info("=== Autohome review scraper finished ===")

	cars, err := storage.ReadCarInfo(cfg.InputCSV)
	if err != nil {
		logger.Error("Cannot load vehicles: %v", err)
		logger.Error("The input CSV needs the columns %s, %s, %s", storage.ColSeriesID, storage.ColRank, storage.ColName)
		return 1
	}
	if len(cars) == 0 {
		logger.Error("No vehicles in %s", cfg.InputCSV)
		return 1
	}
	logger.Info("Loaded %d vehicles from %s", len(cars), cfg.InputCSV)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := autohome.NewSession(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start browser: %v", err)
		return 1
	}
	defer session.Close()

	insights := services.NewInsightService(logger)
	job := &services.ReviewJob{
		Scraper:   autohome.NewReviewScraper(session, cfg, logger, time.Now),
		OutputDir: cfg.OutputDir,
		Logger:    logger,
		Cleaner:   services.NewCleaner(logger),
		Insight:   insights,
		Now:       time.Now,
	}
	if cfg.PostgresEnabled {
		pg, err := storage.NewPostgresWriter(cfg.DSN(), cfg.MaxRetries)
		if err != nil {
			logger.Warn("PostgreSQL unavailable, skipping: %v", err)
		} else {
			defer pg.Close()
			job.Sink = pg
		}
	}

	res, err := job.Run(ctx, cars)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Interrupted by user")
	} else if err != nil {
		logger.Error("Review run failed: %v", err)
		return 1
	}

	if err := insights.Render(os.Stdout, res.Report); err != nil {
		logger.Warn("Report output failed: %v", err)
	}
	logger.Info("Collected %d reviews, files in %s", res.Report.TotalReviews, cfg.OutputDir)
	return 0
}
