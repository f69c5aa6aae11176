package storage

import "autohome-scraper/models"

// SalesSink is any secondary store for a sales ranking run.
type SalesSink interface {
	WriteSales(runID string, records []models.SalesRecord) error
	Close() error
}

// ReviewSink is any secondary store for the reviews of one vehicle.
type ReviewSink interface {
	WriteReviews(runID string, car models.CarInfo, reviews []*models.ReviewRecord) error
	Close() error
}

var (
	_ SalesSink  = (*PostgresWriter)(nil)
	_ ReviewSink = (*PostgresWriter)(nil)
)
