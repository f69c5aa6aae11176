package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"autohome-scraper/models"
)

// utf8BOM lets spreadsheet tools detect the encoding of the Chinese headers.
const utf8BOM = "\ufeff"

// SalesHeader is the column order of the sales ranking CSV. The review
// workflow reads its own input back by these names.
var SalesHeader = []string{
	ColRank, ColName, "车型月销量", ColSeriesID, "价格区间", "用户评分", "爬取时间",
}

// ReviewHeader returns the column order of every review CSV.
func ReviewHeader() []string {
	h := []string{"车型名称", "车型版本", "发表时间"}
	h = append(h, models.CarAttributes...)
	h = append(h, "最满意", "最不满意")
	for _, c := range models.ReviewCategories {
		h = append(h, c+"评分", c+"评论")
	}
	return append(h, "观看数", "点赞数", "评论数", "购车目的", "评论链接", "爬取时间")
}

// CSVWriter writes records to a UTF-8 CSV file with a BOM.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	if _, err := f.WriteString(utf8BOM); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// WriteSales appends one row per sales record.
func (c *CSVWriter) WriteSales(records []models.SalesRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, SalesRow(r))
	}
	return c.writeRows(rows)
}

// WriteReviews appends one row per review.
func (c *CSVWriter) WriteReviews(reviews []*models.ReviewRecord) error {
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, ReviewRow(r))
	}
	return c.writeRows(rows)
}

func (c *CSVWriter) writeRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
		c.rows++
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Path is the file being written.
func (c *CSVWriter) Path() string { return c.path }

// Rows is the number of data rows written so far.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}

// SaveSales writes records to a new sales CSV at path.
func SaveSales(path string, records []models.SalesRecord) error {
	w, err := NewCSVWriter(path, SalesHeader)
	if err != nil {
		return err
	}
	if err := w.WriteSales(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// SaveReviews writes reviews to a new review CSV at path.
func SaveReviews(path string, reviews []*models.ReviewRecord) error {
	w, err := NewCSVWriter(path, ReviewHeader())
	if err != nil {
		return err
	}
	if err := w.WriteReviews(reviews); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// SalesRow renders r in SalesHeader order.
func SalesRow(r models.SalesRecord) []string {
	return []string{
		strconv.Itoa(r.Rank),
		r.Name,
		strconv.Itoa(r.MonthlySales),
		r.SeriesID,
		r.PriceRange,
		formatScore(r.Rating),
		r.CapturedAt,
	}
}

// ReviewRow renders r in ReviewHeader order.
func ReviewRow(r *models.ReviewRecord) []string {
	row := []string{r.CarName, r.CarSpec, r.PublishDate}
	for _, a := range models.CarAttributes {
		row = append(row, r.Attributes[a])
	}
	row = append(row, r.MostSatisfied, r.LeastSatisfied)
	for _, c := range models.ReviewCategories {
		s := r.Scores[c]
		row = append(row, formatScore(s.Rating), s.Comment)
	}
	return append(row,
		strconv.Itoa(r.Views),
		strconv.Itoa(r.Likes),
		strconv.Itoa(r.Comments),
		r.PurchasePurpose,
		r.Link,
		r.CapturedAt,
	)
}

// formatScore renders whole numbers with one decimal ("4.0").
func formatScore(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
