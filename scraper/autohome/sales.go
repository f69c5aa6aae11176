// Package autohome drives a browser through the autohome sales ranking and
// owner review pages.
package autohome

import (
	"context"
	"time"

	"autohome-scraper/config"
	"autohome-scraper/models"
	"autohome-scraper/scraper/extract"
	"autohome-scraper/scraper/paging"
	"autohome-scraper/utils"
)

// scrollBursts is how many scroll-to-bottom actions replace a missing
// "load more" control.
const scrollBursts = 3

// SalesScraper collects the sales ranking by repeatedly loading more of the
// ranking page.
type SalesScraper struct {
	browser   Browser
	cfg       *config.Config
	logger    *utils.Logger
	extractor *extract.SalesExtractor
	retry     *utils.RetryConfig
}

// SalesOutcome is the raw, unsorted result of a ranking scrape.
type SalesOutcome struct {
	Records []models.SalesRecord
	Rounds  int
	Reason  paging.StopReason
}

// NewSalesScraper creates a SalesScraper over b.
func NewSalesScraper(b Browser, cfg *config.Config, logger *utils.Logger, now func() time.Time) *SalesScraper {
	return &SalesScraper{
		browser:   b,
		cfg:       cfg,
		logger:    logger,
		extractor: extract.NewSalesExtractor(logger, now),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape opens the ranking page and loads records until the target count is
// reached or loading stagnates. A page that never shows the ranking yields
// an empty outcome and a PageError.
func (s *SalesScraper) Scrape(ctx context.Context) (SalesOutcome, error) {
	s.logger.Info("[sales] Opening ranking page %s (target %d)", s.cfg.RankURL, s.cfg.TargetCount)

	err := s.retry.Do(ctx, "open-ranking", func() error {
		return s.browser.Navigate(ctx, s.cfg.RankURL)
	})
	if err != nil {
		return SalesOutcome{}, err
	}
	if err := utils.Sleep(ctx, s.cfg.LoadSettle); err != nil {
		return SalesOutcome{Reason: paging.StopCancelled}, err
	}

	if err := s.browser.WaitFor(ctx, extract.RankMarker, s.cfg.RankWaitTimeout); err != nil {
		s.logger.Error("[sales] Ranking did not load: %v", err)
		return SalesOutcome{}, &PageError{Op: "load ranking", Target: s.cfg.RankURL, Err: err}
	}

	loader := &paging.Loader[models.SalesRecord, int]{
		Source:   &salesSource{s: s},
		Key:      func(r models.SalesRecord) int { return r.Rank },
		Target:   s.cfg.TargetCount,
		Patience: paging.DefaultPatience,
		Settle:   s.cfg.PageSettle,
		Prime:    true,
		Logger:   s.logger,
	}
	res := loader.Run(ctx)

	s.logger.Info("[sales] Loading finished (%s): %d records in %d rounds", res.Reason, len(res.Records), res.Rounds)
	return SalesOutcome{Records: res.Records, Rounds: res.Rounds, Reason: res.Reason}, ctx.Err()
}

// salesSource adapts the ranking page to the loader.
type salesSource struct {
	s *SalesScraper
}

// LoadMore scrolls to the bottom, then clicks the first interactable "load
// more" control or, when there is none, scrolls a few more times.
func (src *salesSource) LoadMore(ctx context.Context) error {
	s := src.s
	if err := s.browser.ScrollToBottom(ctx); err != nil {
		return err
	}
	if err := utils.Sleep(ctx, s.cfg.PageSettle); err != nil {
		return err
	}

	for _, loc := range loadMoreLocators {
		clicked, err := s.browser.Click(ctx, loc, false)
		if err != nil {
			return err
		}
		if clicked {
			s.logger.Info("[sales] Clicked load more (%s)", loc)
			return utils.Sleep(ctx, s.cfg.LoadSettle)
		}
	}

	for i := 0; i < scrollBursts; i++ {
		if err := s.browser.ScrollToBottom(ctx); err != nil {
			return err
		}
		if err := utils.Sleep(ctx, s.cfg.ScrollSettle); err != nil {
			return err
		}
	}
	return nil
}

func (src *salesSource) Extract(ctx context.Context) ([]models.SalesRecord, error) {
	s := src.s
	if err := s.browser.WaitFor(ctx, extract.RankMarker, s.cfg.RankWaitTimeout); err != nil {
		return nil, err
	}
	if err := utils.Sleep(ctx, s.cfg.PageSettle); err != nil {
		return nil, err
	}

	page, err := s.browser.HTML(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.extractor.ExtractHTML(page)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[sales] Found %d ranking elements, %d usable", res.Inspected, len(res.Records))
	return res.Records, nil
}
