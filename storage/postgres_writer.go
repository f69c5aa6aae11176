package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"autohome-scraper/models"
)

const batchSize = 50

var (
	salesColumns = []string{
		"run_id", "rank", "name", "monthly_sales", "series_id", "price_range", "rating", "captured_at",
	}
	reviewColumns = []string{
		"run_id", "series_id", "link", "car_name", "car_spec", "publish_date", "attributes",
		"most_satisfied", "least_satisfied", "scores", "views", "likes", "comments",
		"purchase_purpose", "captured_at",
	}
)

// PostgresWriter mirrors the CSV outputs into PostgreSQL, tagged by run id.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, pingAttempts int) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if pingAttempts < 1 {
		pingAttempts = 1
	}
	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i+1 < pingAttempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS sales_rankings (
			id            SERIAL PRIMARY KEY,
			run_id        UUID         NOT NULL,
			rank          INTEGER      NOT NULL,
			name          TEXT         NOT NULL,
			monthly_sales INTEGER      NOT NULL DEFAULT 0,
			series_id     VARCHAR(32)  NOT NULL DEFAULT '',
			price_range   TEXT         NOT NULL DEFAULT '',
			rating        NUMERIC(3,2) NOT NULL DEFAULT 0,
			captured_at   TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (run_id, rank)
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id               SERIAL PRIMARY KEY,
			run_id           UUID        NOT NULL,
			series_id        VARCHAR(32) NOT NULL,
			link             TEXT        NOT NULL,
			car_name         TEXT        NOT NULL DEFAULT '',
			car_spec         TEXT        NOT NULL DEFAULT '',
			publish_date     TEXT        NOT NULL DEFAULT '',
			attributes       JSONB       NOT NULL DEFAULT '{}',
			most_satisfied   TEXT        NOT NULL DEFAULT '',
			least_satisfied  TEXT        NOT NULL DEFAULT '',
			scores           JSONB       NOT NULL DEFAULT '{}',
			views            INTEGER     NOT NULL DEFAULT 0,
			likes            INTEGER     NOT NULL DEFAULT 0,
			comments         INTEGER     NOT NULL DEFAULT 0,
			purchase_purpose TEXT        NOT NULL DEFAULT '',
			captured_at      TEXT        NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_sales_rankings_series ON sales_rankings(series_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_run_series    ON reviews(run_id, series_id);
	`)
	return err
}

// WriteSales batch-inserts the ranking of one run.
func (pw *PostgresWriter) WriteSales(runID string, records []models.SalesRecord) error {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			runID, r.Rank, r.Name, r.MonthlySales, r.SeriesID, r.PriceRange, r.Rating, r.CapturedAt,
		})
	}
	return pw.insert("sales_rankings", salesColumns, "ON CONFLICT (run_id, rank) DO NOTHING", rows)
}

// WriteReviews batch-inserts the reviews of one vehicle.
func (pw *PostgresWriter) WriteReviews(runID string, car models.CarInfo, reviews []*models.ReviewRecord) error {
	rows := make([][]any, 0, len(reviews))
	for _, r := range reviews {
		attrs, err := json.Marshal(r.Attributes)
		if err != nil {
			return fmt.Errorf("postgres: encode attributes: %w", err)
		}
		scores, err := json.Marshal(r.Scores)
		if err != nil {
			return fmt.Errorf("postgres: encode scores: %w", err)
		}
		rows = append(rows, []any{
			runID, car.SeriesID, r.Link, r.CarName, r.CarSpec, r.PublishDate, string(attrs),
			r.MostSatisfied, r.LeastSatisfied, string(scores), r.Views, r.Likes, r.Comments,
			r.PurchasePurpose, r.CapturedAt,
		})
	}
	return pw.insert("reviews", reviewColumns, "", rows)
}

func (pw *PostgresWriter) insert(table string, columns []string, suffix string, rows [][]any) error {
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		args := make([]any, 0, len(batch)*len(columns))
		for _, row := range batch {
			args = append(args, row...)
		}
		if _, err := pw.db.Exec(insertQuery(table, columns, len(batch), suffix), args...); err != nil {
			return fmt.Errorf("postgres: insert into %s: %w", table, err)
		}
	}
	return nil
}

// insertQuery builds a multi-row INSERT with numbered placeholders.
func insertQuery(table string, columns []string, rows int, suffix string) string {
	valueStrings := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		ph := make([]string, len(columns))
		for c := range columns {
			ph[c] = fmt.Sprintf("$%d", r*len(columns)+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), strings.Join(valueStrings, ","))
	if suffix != "" {
		q += " " + suffix
	}
	return q
}

// FetchSales reads back the ranking stored for runID, ordered by rank.
func (pw *PostgresWriter) FetchSales(runID string) ([]models.SalesRecord, error) {
	rows, err := pw.db.Query(`
		SELECT rank, name, monthly_sales, series_id, price_range, rating, captured_at
		FROM sales_rankings
		WHERE run_id = $1
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch sales: %w", err)
	}
	defer rows.Close()

	var records []models.SalesRecord
	for rows.Next() {
		var r models.SalesRecord
		if err := rows.Scan(
			&r.Rank, &r.Name, &r.MonthlySales, &r.SeriesID, &r.PriceRange, &r.Rating, &r.CapturedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
