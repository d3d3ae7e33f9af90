package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SourceStrategy はニュースソースのフェッチ戦略を表す。
type SourceStrategy string

const (
	// StrategyScrape はHTMLページをスクレイピングする戦略。
	StrategyScrape SourceStrategy = "scrape"
	// StrategyFeed はRSS/Atomフィードをパースする戦略。
	StrategyFeed SourceStrategy = "feed"
)

// SnapshotBackend はスナップショットの保存先を表す。
type SnapshotBackend string

const (
	// BackendFile はJSONファイルへの保存。
	BackendFile SnapshotBackend = "file"
	// BackendPostgres はPostgreSQLへの保存。
	BackendPostgres SnapshotBackend = "postgres"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Source
	SourceStrategy SourceStrategy
	SourceURL      string
	FeedURL        string
	SourceName     string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Snapshot
	SnapshotBackend SnapshotBackend
	SnapshotPath    string
	DatabaseURL     string

	// Refresh
	RefreshEnabled  bool
	RefreshInterval time.Duration

	// Trigger
	CronSecret string

	// Rate Limit
	RateLimitGeneral int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// SNAPSHOT_BACKEND=postgresの場合のみDATABASE_URLが必須となる。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.SourceStrategy = SourceStrategy(getEnvString("SOURCE_STRATEGY", string(StrategyScrape)))
	switch cfg.SourceStrategy {
	case StrategyScrape, StrategyFeed:
	default:
		return nil, fmt.Errorf("invalid SOURCE_STRATEGY: %s (allowed: scrape, feed)", cfg.SourceStrategy)
	}

	cfg.SourceURL = getEnvString("SOURCE_URL", "https://www.koreadognews.co.kr")
	cfg.FeedURL = getEnvString("FEED_URL", "")
	cfg.SourceName = getEnvString("SOURCE_NAME", "한국애견신문")

	if cfg.SourceStrategy == StrategyFeed && cfg.FeedURL == "" {
		return nil, fmt.Errorf("FEED_URL is required when SOURCE_STRATEGY=feed")
	}

	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)

	cfg.SnapshotBackend = SnapshotBackend(getEnvString("SNAPSHOT_BACKEND", string(BackendFile)))
	switch cfg.SnapshotBackend {
	case BackendFile, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid SNAPSHOT_BACKEND: %s (allowed: file, postgres)", cfg.SnapshotBackend)
	}

	cfg.SnapshotPath = getEnvString("SNAPSHOT_PATH", "data/dog-news.json")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if cfg.SnapshotBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when SNAPSHOT_BACKEND=postgres")
	}

	cfg.RefreshEnabled = getEnvBool("REFRESH_ENABLED", true)
	cfg.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", 3*time.Hour)

	cfg.CronSecret = os.Getenv("CRON_SECRET")

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
