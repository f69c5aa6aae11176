package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var reviewDefaults = Defaults{
	InputCSV:  "autohome_sales_ranking_id.csv",
	MaxPages:  25,
	OutputDir: "autohome_reviews_output",
	LogFile:   "autohome_scraper.log",
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MAX_PAGES", "INPUT_CSV", "HEADLESS", "POSTGRES_ENABLED", "PAGE_SETTLE", "MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg := Load(reviewDefaults)

	assert.Equal(t, 25, cfg.MaxPages)
	assert.Equal(t, "autohome_sales_ranking_id.csv", cfg.InputCSV)
	assert.Equal(t, "autohome_reviews_output", cfg.OutputDir)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.PostgresEnabled)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.RankWaitTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReviewWaitTimeout)
	assert.Equal(t, 3*time.Second, cfg.PageSettle)
	assert.Equal(t, 5*time.Second, cfg.LoadSettle)
	assert.Equal(t, 2*time.Second, cfg.ScrollSettle)
	assert.Equal(t, time.Second, cfg.DetailInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_PAGES", "3")
	t.Setenv("HEADLESS", "false")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("PAGE_SETTLE", "1500ms")
	t.Setenv("REVIEW_BASE_URL", "https://k.example.test")

	cfg := Load(reviewDefaults)

	assert.Equal(t, 3, cfg.MaxPages)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.PostgresEnabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.PageSettle)
	assert.Equal(t, "https://k.example.test", cfg.ReviewBaseURL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("HEADLESS", "sometimes")
	t.Setenv("PAGE_SETTLE", "3")

	cfg := Load(reviewDefaults)

	assert.Equal(t, 25, cfg.MaxPages)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 3*time.Second, cfg.PageSettle)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "autohome", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=autohome sslmode=disable", cfg.DSN())
}
