package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"autohome-scraper/models"
)

// RunStampLayout formats the timestamp shared by all files of one run.
const RunStampLayout = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeName removes characters that are not allowed in file names and
// turns spaces into underscores.
func SanitizeName(name string) string {
	return strings.ReplaceAll(unsafeNameChars.ReplaceAllString(name, ""), " ", "_")
}

// VehicleTag identifies a vehicle in file names and progress lines:
// zero-padded rank, name and series id.
func VehicleTag(rank int, name, seriesID string) string {
	return fmt.Sprintf("%03d_%s_%s", rank, name, seriesID)
}

// ReviewFilename is the per-vehicle review CSV name.
func ReviewFilename(car models.CarInfo) string {
	return VehicleTag(car.Rank, SanitizeName(car.Name), car.SeriesID) + ".csv"
}

// RunStamp renders t with RunStampLayout.
func RunStamp(t time.Time) string {
	return t.Format(RunStampLayout)
}

func SalesFilename(stamp string) string {
	return "autohome_sales_ranking_" + stamp + ".csv"
}

func ReviewSummaryFilename(stamp string) string {
	return "autohome_reviews_summary_" + stamp + ".csv"
}

func ProgressFilename(stamp string) string {
	return "progress_" + stamp + ".txt"
}

func ReportFilename(stamp string) string {
	return "summary_report_" + stamp + ".txt"
}
