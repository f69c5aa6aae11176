package services

import (
	"sort"
	"strings"
	"unicode"

	"autohome-scraper/models"
	"autohome-scraper/utils"
)

// Cleaner tidies scraped records before they are written.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// FinalizeSales normalises text fields, orders records by ascending rank and
// keeps at most target of them. A non-positive target keeps everything. The
// input slice is not modified.
func (c *Cleaner) FinalizeSales(records []models.SalesRecord, target int) []models.SalesRecord {
	result := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		r.Name = normaliseText(r.Name)
		r.PriceRange = normaliseText(r.PriceRange)
		r.SeriesID = strings.TrimSpace(r.SeriesID)
		result = append(result, r)
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Rank < result[j].Rank })

	if target > 0 && len(result) > target {
		c.logger.Info("[cleaner] Trimming %d sales records to target %d", len(result), target)
		result = result[:target]
	}
	return result
}

// NormalizeReviews returns trimmed copies of the reviews, dropping nil
// entries. Free-text comments keep their inner line breaks. The input records
// are not modified.
func (c *Cleaner) NormalizeReviews(reviews []*models.ReviewRecord) []*models.ReviewRecord {
	result := make([]*models.ReviewRecord, 0, len(reviews))
	for _, src := range reviews {
		if src == nil {
			continue
		}
		r := *src
		r.CarName = normaliseText(r.CarName)
		r.CarSpec = normaliseText(r.CarSpec)
		r.PublishDate = strings.TrimSpace(r.PublishDate)
		r.PurchasePurpose = normaliseText(r.PurchasePurpose)
		r.MostSatisfied = strings.TrimSpace(r.MostSatisfied)
		r.LeastSatisfied = strings.TrimSpace(r.LeastSatisfied)

		r.Attributes = make(map[string]string, len(src.Attributes))
		for k, v := range src.Attributes {
			r.Attributes[k] = normaliseText(v)
		}
		r.Scores = make(map[string]models.CategoryScore, len(src.Scores))
		for k, s := range src.Scores {
			s.Comment = strings.TrimSpace(s.Comment)
			r.Scores[k] = s
		}
		result = append(result, &r)
	}
	if dropped := len(reviews) - len(result); dropped > 0 {
		c.logger.Debug("[cleaner] Dropped %d empty reviews", dropped)
	}
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
