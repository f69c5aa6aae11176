package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"autohome-scraper/models"
	"autohome-scraper/scraper/autohome"
	"autohome-scraper/storage"
	"autohome-scraper/utils"
)

// VehicleScraper gathers the reviews of one vehicle.
type VehicleScraper interface {
	ScrapeVehicle(ctx context.Context, car models.CarInfo) autohome.VehicleScrape
}

// ReviewJob runs the review workflow over a list of vehicles, one at a time,
// writing per-vehicle files as it goes.
type ReviewJob struct {
	Scraper   VehicleScraper
	OutputDir string
	// Sink, when set, also receives each vehicle's reviews. Its failures are
	// logged only.
	Sink    storage.ReviewSink
	Logger  *utils.Logger
	Cleaner *Cleaner
	Insight *InsightService
	Now     func() time.Time
}

// JobResult lists what a ReviewJob produced.
type JobResult struct {
	RunID       string
	Results     []models.VehicleResult
	Report      models.ReviewReport
	SummaryFile string
	ReportFile  string
	ProgressLog string
}

// Run processes cars in order. A vehicle's failure never stops the run;
// cancellation does, after the vehicle in flight. The aggregate CSV and the
// report are written only when some vehicle produced reviews.
func (j *ReviewJob) Run(ctx context.Context, cars []models.CarInfo) (*JobResult, error) {
	now := j.Now
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(j.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stamp := storage.RunStamp(now())
	out := &JobResult{RunID: models.NewRunID()}
	progress := storage.NewProgressLog(filepath.Join(j.OutputDir, storage.ProgressFilename(stamp)), now)
	out.ProgressLog = progress.Path()

	var all []*models.ReviewRecord
	for i, car := range cars {
		if ctx.Err() != nil {
			j.Logger.Warn("[job] Interrupted before vehicle %d/%d", i+1, len(cars))
			break
		}
		j.Logger.Info("[job] Vehicle %d/%d: rank %d - %s (ID: %s)", i+1, len(cars), car.Rank, car.Name, car.SeriesID)

		res := j.processVehicle(ctx, car, out.RunID)
		out.Results = append(out.Results, res)
		all = append(all, res.Reviews...)

		if err := progress.Record(res); err != nil {
			j.Logger.Error("[job] Progress log: %v", err)
		}
	}

	out.Report = j.Insight.ReviewReport(out.RunID, j.OutputDir, now(), cars, out.Results)

	if len(all) == 0 {
		j.Logger.Warn("[job] No reviews collected")
		return out, ctx.Err()
	}

	out.SummaryFile = filepath.Join(j.OutputDir, storage.ReviewSummaryFilename(stamp))
	if err := storage.SaveReviews(out.SummaryFile, all); err != nil {
		j.Logger.Error("[job] Summary CSV: %v", err)
		out.SummaryFile = ""
	} else {
		j.Logger.Info("[job] %d reviews saved to %s", len(all), out.SummaryFile)
	}

	out.ReportFile = filepath.Join(j.OutputDir, storage.ReportFilename(stamp))
	if err := j.writeReport(out.ReportFile, out.Report); err != nil {
		j.Logger.Error("[job] Summary report: %v", err)
		out.ReportFile = ""
	} else {
		j.Logger.Info("[job] Report written to %s", out.ReportFile)
	}

	return out, ctx.Err()
}

func (j *ReviewJob) processVehicle(ctx context.Context, car models.CarInfo, runID string) models.VehicleResult {
	scrape := j.Scraper.ScrapeVehicle(ctx, car)
	res := models.VehicleResult{Car: car, Reviews: j.Cleaner.NormalizeReviews(scrape.Reviews)}

	switch {
	case len(res.Reviews) > 0:
		res.Outcome = models.OutcomeSuccess
	case scrape.Err != nil:
		res.Outcome, res.Err = models.OutcomeError, scrape.Err
		j.Logger.Error("[job] %s failed: %v", car.Name, scrape.Err)
		return res
	default:
		res.Outcome = models.OutcomeNoData
		j.Logger.Warn("[job] %s: no reviews (%d links, %d pages, %s)", car.Name, scrape.Links, scrape.Pages, scrape.Status)
		return res
	}

	res.File = filepath.Join(j.OutputDir, storage.ReviewFilename(car))
	if err := storage.SaveReviews(res.File, res.Reviews); err != nil {
		j.Logger.Error("[job] %s: save CSV: %v", car.Name, err)
		res.Outcome, res.Err, res.File = models.OutcomeError, err, ""
		return res
	}
	j.Logger.Info("[job] %s done: %d reviews (%d skipped) -> %s", car.Name, len(res.Reviews), scrape.Skipped, res.File)

	if j.Sink != nil {
		if err := j.Sink.WriteReviews(runID, car, res.Reviews); err != nil {
			j.Logger.Warn("[job] %s: database write failed: %v", car.Name, err)
		}
	}
	return res
}

func (j *ReviewJob) writeReport(path string, r models.ReviewReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := j.Insight.Render(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
