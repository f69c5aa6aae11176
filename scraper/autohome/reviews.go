package autohome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autohome-scraper/config"
	"autohome-scraper/models"
	"autohome-scraper/scraper/extract"
	"autohome-scraper/scraper/paging"
	"autohome-scraper/utils"
)

// ReviewScraper collects owner reviews for one vehicle at a time.
type ReviewScraper struct {
	browser   Browser
	cfg       *config.Config
	logger    *utils.Logger
	extractor *extract.ReviewExtractor
	pacer     *utils.Pacer
	retry     *utils.RetryConfig
}

// VehicleScrape is what ScrapeVehicle gathered. Reviews holds every detail
// page that could be read, even when Err is set.
type VehicleScrape struct {
	Reviews []*models.ReviewRecord
	Links   int
	Pages   int
	Status  paging.WalkStatus
	Skipped int
	Err     error
}

// NewReviewScraper creates a ReviewScraper over b.
func NewReviewScraper(b Browser, cfg *config.Config, logger *utils.Logger, now func() time.Time) *ReviewScraper {
	return &ReviewScraper{
		browser:   b,
		cfg:       cfg,
		logger:    logger,
		extractor: extract.NewReviewExtractor(logger, now),
		pacer:     utils.NewPacer(cfg.DetailInterval),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// ListingURL is the newest-first review listing of a vehicle series.
func (s *ReviewScraper) ListingURL(seriesID string) string {
	return strings.TrimRight(s.cfg.ReviewBaseURL, "/") + fmt.Sprintf(reviewListingPath, seriesID)
}

// ScrapeVehicle walks up to MaxPages listing pages of car and then reads
// every harvested review. Failures stay inside this vehicle.
func (s *ReviewScraper) ScrapeVehicle(ctx context.Context, car models.CarInfo) VehicleScrape {
	var out VehicleScrape
	listing := s.ListingURL(car.SeriesID)

	err := s.retry.Do(ctx, "open-listing-"+car.SeriesID, func() error {
		return s.browser.Navigate(ctx, listing)
	})
	if err != nil {
		out.Err = &PageError{Op: "open listing", Target: car.SeriesID, Err: err}
		return out
	}
	if err := utils.Sleep(ctx, s.cfg.DetailInterval); err != nil {
		out.Err = err
		return out
	}

	walk := paging.Walk[models.ReviewLink](ctx, &listingSource{s: s}, s.cfg.MaxPages, s.logger)
	out.Pages, out.Status, out.Links = walk.Pages, walk.Status, len(walk.Items)
	if walk.Status == paging.WalkCancelled {
		out.Err = walk.Err
		return out
	}
	s.logger.Info("[reviews] %s: %d links over %d pages (%s)", car.Name, len(walk.Items), walk.Pages, walk.Status)

	// The listing has no review key of its own, so a review shown on two pages
	// is read twice; revisits are only reported.
	visited := utils.NewLinkSet()
	for i, link := range walk.Items {
		if ctx.Err() != nil {
			out.Err = ctx.Err()
			break
		}
		if !visited.Add(link.URL) {
			s.logger.Warn("[reviews] %s: link revisited: %s", car.Name, link.URL)
		}
		if err := s.pacer.Wait(ctx); err != nil {
			out.Err = err
			break
		}

		rec, err := s.scrapeDetail(ctx, link)
		if err != nil {
			out.Skipped++
			s.logger.Warn("[reviews] %s: review %d/%d skipped: %v", car.Name, i+1, len(walk.Items), err)
			continue
		}
		out.Reviews = append(out.Reviews, rec)
		s.logger.Debug("[reviews] %s: review %d/%d %s views=%d likes=%d comments=%d purpose=%q",
			car.Name, i+1, len(walk.Items), rec.PublishDate, rec.Views, rec.Likes, rec.Comments, rec.PurchasePurpose)
	}
	return out
}

func (s *ReviewScraper) scrapeDetail(ctx context.Context, link models.ReviewLink) (*models.ReviewRecord, error) {
	if err := s.browser.Navigate(ctx, link.URL); err != nil {
		return nil, err
	}
	if err := utils.Sleep(ctx, s.cfg.DetailInterval); err != nil {
		return nil, err
	}

	if err := s.browser.WaitFor(ctx, detailMarker, s.cfg.ReviewWaitTimeout); err != nil {
		if !errors.Is(err, ErrWaitTimeout) {
			return nil, err
		}
		if err := s.browser.WaitFor(ctx, detailFallbackMarker, s.cfg.ReviewWaitTimeout); err != nil {
			return nil, &PageError{Op: "load review", Target: link.URL, Err: err}
		}
	}

	// Counters render lazily; failing to reveal them only leaves them at zero.
	for _, script := range []string{scrollToMiddleScript, revealInteractionsScript} {
		if err := s.browser.Run(ctx, script); err != nil {
			s.logger.Debug("[reviews] reveal script failed on %s: %v", link.URL, err)
		}
	}
	if err := utils.Sleep(ctx, s.cfg.DetailInterval); err != nil {
		return nil, err
	}

	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rec := s.extractor.ExtractDetail(doc.Selection, link.URL)
	rec.PurchasePurpose = link.PurchasePurpose
	return rec, nil
}

func (s *ReviewScraper) snapshot(ctx context.Context) (*goquery.Document, error) {
	page, err := s.browser.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// listingSource adapts the paged review listing to the walker.
type listingSource struct {
	s *ReviewScraper
}

func (src *listingSource) WaitListing(ctx context.Context) error {
	return src.s.browser.WaitFor(ctx, listingMarker, src.s.cfg.ReviewWaitTimeout)
}

func (src *listingSource) Harvest(ctx context.Context) ([]models.ReviewLink, error) {
	doc, err := src.s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pageURL, err := src.s.browser.URL(ctx)
	if err != nil {
		return nil, err
	}
	res := src.s.extractor.ExtractListing(doc.Selection, pageURL)
	return res.Links, nil
}

// Next clicks the first enabled next-page control.
func (src *listingSource) Next(ctx context.Context) (bool, error) {
	for _, loc := range nextPageLocators {
		clicked, err := src.s.browser.Click(ctx, loc, true)
		if err != nil {
			return false, err
		}
		if clicked {
			return true, utils.Sleep(ctx, src.s.cfg.DetailInterval)
		}
	}
	return false, nil
}
