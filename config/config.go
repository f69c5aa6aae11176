package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
	Headless  bool
	UserAgent string

	RankURL       string
	ReviewBaseURL string

	TargetCount int
	InputCSV    string
	MaxPages    int
	OutputDir   string
	LogFile     string
	MaxRetries  int

	// Bounded waits for page markers.
	RankWaitTimeout   time.Duration
	ReviewWaitTimeout time.Duration

	// Fixed settle delays after actions that trigger asynchronous loading.
	PageSettle     time.Duration
	LoadSettle     time.Duration
	ScrollSettle   time.Duration
	DetailInterval time.Duration
}

// Defaults are the per-entry-point constants that environment variables may
// override.
type Defaults struct {
	TargetCount int
	InputCSV    string
	MaxPages    int
	OutputDir   string
	LogFile     string
}

// Load reads the .env file and returns a populated Config struct.
func Load(d Defaults) *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "autohome"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
		Headless:  getEnvBool("HEADLESS", true),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/139.0.7258.67 Safari/537.36"),

		RankURL:       getEnv("RANK_URL", "https://www.autohome.com.cn/rank/"),
		ReviewBaseURL: getEnv("REVIEW_BASE_URL", "https://k.autohome.com.cn"),

		TargetCount: getEnvInt("TARGET_COUNT", d.TargetCount),
		InputCSV:    getEnv("INPUT_CSV", d.InputCSV),
		MaxPages:    getEnvInt("MAX_PAGES", d.MaxPages),
		OutputDir:   getEnv("OUTPUT_DIR", d.OutputDir),
		LogFile:     getEnv("LOG_FILE", d.LogFile),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),

		RankWaitTimeout:   getEnvDuration("RANK_WAIT_TIMEOUT", 15*time.Second),
		ReviewWaitTimeout: getEnvDuration("REVIEW_WAIT_TIMEOUT", 10*time.Second),

		PageSettle:     getEnvDuration("PAGE_SETTLE", 3*time.Second),
		LoadSettle:     getEnvDuration("LOAD_SETTLE", 5*time.Second),
		ScrollSettle:   getEnvDuration("SCROLL_SETTLE", 2*time.Second),
		DetailInterval: getEnvDuration("DETAIL_INTERVAL", time.Second),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("1500ms", "3s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
