package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autohome-scraper/models"
	"autohome-scraper/utils"
)

// RankMarker identifies one candidate element of the sales ranking.
const RankMarker = "[data-rank-num]"

const rankAttr = "data-rank-num"

var (
	salesName = Field{Locators: []Locator{
		CSS(".tw-text-nowrap.tw-text-lg.tw-font-medium"),
		CSS(".tw-text-lg.tw-font-medium"),
		CSS("[class*='tw-text-lg'][class*='tw-font-medium']"),
	}}

	salesVolume = Field{
		Locators: []Locator{
			CSSAll(`.tw-relative.tw-top-\[1px\].tw-ml-\[3px\].tw-text-\[18px\].tw-font-bold`),
			CSSAll("[class*='tw-text-'][class*='tw-font-bold']"),
			CSSAll(".tw-font-bold"),
		},
		Accept:  AcceptCount(2),
		Default: "0",
	}

	salesSeriesID = Field{Locators: []Locator{
		Attr("[data-series-id]", "data-series-id"),
		Attr("button[data-series-id]", "data-series-id"),
	}}

	salesPrice = Field{
		Locators: []Locator{
			CSS(`.tw-font-medium.tw-text-\[\#717887\]`),
			CSS("[class*='tw-text-'][class*='717887']"),
		},
		Accept: Contains("万"),
	}

	salesRating = Field{
		Locators: []Locator{
			CSSAll(".tw-font-bold"),
			CSSAll("strong.tw-font-bold"),
		},
		Accept:  AcceptRating,
		Default: "0",
	}
)

// SalesResult is the output of one extraction round over the ranking page.
type SalesResult struct {
	Records   []models.SalesRecord
	Inspected int
}

// SalesExtractor reads sales records from a snapshot of the ranking page.
type SalesExtractor struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewSalesExtractor creates a SalesExtractor. A nil now uses time.Now.
func NewSalesExtractor(logger *utils.Logger, now func() time.Time) *SalesExtractor {
	if now == nil {
		now = time.Now
	}
	return &SalesExtractor{logger: logger, now: now}
}

// ExtractHTML parses a page snapshot and extracts from it.
func (e *SalesExtractor) ExtractHTML(page string) (SalesResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return SalesResult{}, fmt.Errorf("extract: parse ranking page: %w", err)
	}
	return e.Extract(doc.Selection), nil
}

// Extract reads every candidate element under root. Items without a rank or
// with an empty name are dropped; any other missing field takes its default.
func (e *SalesExtractor) Extract(root *goquery.Selection) SalesResult {
	candidates := root.Find(RankMarker)
	res := SalesResult{Inspected: candidates.Length()}
	capturedAt := e.now().Format(models.TimeLayout)

	candidates.Each(func(i int, item *goquery.Selection) {
		rec, err := e.extractItem(item, capturedAt)
		if err != nil {
			e.logger.Warn("[extract] Ranking item %d skipped: %v", i, err)
			return
		}
		if rec == nil {
			return
		}
		res.Records = append(res.Records, *rec)
		e.logger.Debug("[extract] Rank %d - %s - sales %d - id %s",
			rec.Rank, rec.Name, rec.MonthlySales, rec.SeriesID)
	})

	e.logger.Debug("[extract] Ranking round: %d candidates, %d records", res.Inspected, len(res.Records))
	return res
}

func (e *SalesExtractor) extractItem(item *goquery.Selection, capturedAt string) (*models.SalesRecord, error) {
	rawRank := strings.TrimSpace(item.AttrOr(rankAttr, ""))
	if rawRank == "" {
		return nil, nil
	}
	rank, err := strconv.Atoi(rawRank)
	if err != nil {
		return nil, fmt.Errorf("bad rank %q: %w", rawRank, err)
	}
	if rank <= 0 {
		return nil, fmt.Errorf("rank %d is not positive", rank)
	}

	name := salesName.Extract(item)
	if name == "" {
		return nil, nil
	}

	sales, _ := ParseCount(salesVolume.Extract(item), 0)
	rating, _ := ParseRating(salesRating.Extract(item))

	return &models.SalesRecord{
		Rank:         rank,
		Name:         name,
		MonthlySales: sales,
		SeriesID:     salesSeriesID.Extract(item),
		PriceRange:   salesPrice.Extract(item),
		Rating:       rating,
		CapturedAt:   capturedAt,
	}, nil
}
