// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/dognews/internal/config"
	"github.com/hitoshi/dognews/internal/database"
	"github.com/hitoshi/dognews/internal/fetcher"
	"github.com/hitoshi/dognews/internal/handler"
	"github.com/hitoshi/dognews/internal/logger"
	"github.com/hitoshi/dognews/internal/metrics"
	"github.com/hitoshi/dognews/internal/middleware"
	"github.com/hitoshi/dognews/internal/news"
	"github.com/hitoshi/dognews/internal/normalize"
	"github.com/hitoshi/dognews/internal/repository"
	"github.com/hitoshi/dognews/internal/security"
	"github.com/hitoshi/dognews/internal/worker/refresh"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("source_strategy", string(cfg.SourceStrategy)),
		slog.String("snapshot_backend", string(cfg.SnapshotBackend)),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// pipeline はニュース取り込みパイプラインの組み立て結果を保持する。
// dbはファイルバックエンド構成ではnil。
type pipeline struct {
	service   *news.Service
	collector *metrics.Collector
	registry  *prometheus.Registry
	db        *sql.DB
}

// close は保持しているリソースを解放する。
func (p *pipeline) close() {
	if p.db != nil {
		p.db.Close()
	}
}

// buildPipeline は設定に従ってフェッチ戦略・スナップショットバックエンド・
// メトリクスをワイヤリングし、ニュースサービスを組み立てる。
func buildPipeline(cfg *config.Config) (*pipeline, error) {
	// 1. スナップショットリポジトリの初期化
	var (
		repo repository.SnapshotRepository
		db   *sql.DB
	)
	switch cfg.SnapshotBackend {
	case config.BackendPostgres:
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		slog.Info("database connection established")
		repo = repository.NewPostgresSnapshotRepo(db)
	default:
		repo = repository.NewFileSnapshotRepo(cfg.SnapshotPath)
	}

	// 2. セキュリティサービスとフェッチ戦略の初期化
	// フェッチ対象URLは起動時に静的検証し、内部ネットワークを指す
	// 設定ミスを早期に検出する。
	ssrfGuard := security.NewSSRFGuard()

	var sourceFetcher fetcher.SourceFetcher
	switch cfg.SourceStrategy {
	case config.StrategyFeed:
		if err := ssrfGuard.ValidateURL(cfg.FeedURL); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("unsafe FEED_URL: %w", err)
		}
		sourceFetcher = fetcher.NewFeedFetcher(
			cfg.FeedURL, ssrfGuard, slog.Default(), cfg.FetchTimeout, cfg.FetchMaxSize,
		)
	default:
		if err := ssrfGuard.ValidateURL(cfg.SourceURL); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("unsafe SOURCE_URL: %w", err)
		}
		sourceFetcher = fetcher.NewScrapeFetcher(
			cfg.SourceURL, ssrfGuard, slog.Default(), cfg.FetchTimeout, cfg.FetchMaxSize,
		)
	}

	// 3. 正規化とメトリクスの初期化
	normalizer := normalize.New(cfg.SourceName, cfg.SourceURL)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ニュースサービスの組み立て
	service := news.NewService(sourceFetcher, repo, normalizer, collector, slog.Default())

	return &pipeline{
		service:   service,
		collector: collector,
		registry:  registry,
		db:        db,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// 取り込みパイプラインをワイヤリングし、HTTPサーバーを起動する。
// REFRESH_ENABLEDの場合は定期取り込みスケジューラもバックグラウンドで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	// レート制限の設定（configのRateLimitGeneralはreq/min単位なのでreq/secに変換する）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	var healthChecker handler.HealthChecker
	if p.db != nil {
		healthChecker = p.db
	}

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		StatusRecorder:    p.collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		NewsService: p.service,
		CronSecret:  cfg.CronSecret,

		HealthChecker:   healthChecker,
		MetricsGatherer: p.registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 定期取り込みスケジューラをバックグラウンドで起動
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()

	if cfg.RefreshEnabled {
		scheduler := refresh.NewScheduler(p.service, slog.Default())
		go scheduler.Start(schedulerCtx, cfg.RefreshInterval)
	}

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	cancelScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker は取り込みワーカーモードで起動する。
// HTTPサーバーを立てず、定期取り込みスケジューラのみを実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	scheduler := refresh.NewScheduler(p.service, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("refresh_interval", cfg.RefreshInterval),
	)

	// スケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.RefreshInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
// postgresバックエンド構成でのみ有効。
func runMigrate(cfg *config.Config) error {
	if cfg.SnapshotBackend != config.BackendPostgres {
		return fmt.Errorf("migrate requires SNAPSHOT_BACKEND=postgres (current: %s)", cfg.SnapshotBackend)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
