// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/daybook/internal/auth"
	"github.com/hitoshi/daybook/internal/config"
	"github.com/hitoshi/daybook/internal/daily"
	"github.com/hitoshi/daybook/internal/database"
	"github.com/hitoshi/daybook/internal/emotion"
	"github.com/hitoshi/daybook/internal/habit"
	"github.com/hitoshi/daybook/internal/handler"
	"github.com/hitoshi/daybook/internal/logger"
	"github.com/hitoshi/daybook/internal/metrics"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/oracle"
	"github.com/hitoshi/daybook/internal/reminder"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/security"
	"github.com/hitoshi/daybook/internal/suggestion"
	"github.com/hitoshi/daybook/internal/todo"
	"github.com/hitoshi/daybook/internal/transcript"
	"github.com/hitoshi/daybook/internal/user"
	"github.com/hitoshi/daybook/internal/userlock"
	"github.com/hitoshi/daybook/internal/worker/cleanup"

	"golang.org/x/time/rate"
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
		slog.String("base_url", cfg.BaseURL),
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

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	habitRepo := repository.NewPostgresHabitRepo(db)
	todoRepo := repository.NewPostgresTodoRepo(db)
	reminderRepo := repository.NewPostgresReminderRepo(db)
	emotionRepo := repository.NewPostgresEmotionRepo(db)
	transcriptRepo := repository.NewPostgresTranscriptRepo(db)
	suggestionRepo := repository.NewPostgresSuggestionRepo(db)

	// 3. メトリクスとセキュリティサービスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	sanitizer := security.NewTextSanitizer()

	// 4. ドメインサービスの初期化
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	habitService := habit.NewService(habitRepo, slog.Default())
	todoService := todo.NewService(todoRepo, slog.Default())
	reminderService := reminder.NewService(reminderRepo, slog.Default())
	emotionService := emotion.NewService(emotionRepo, sanitizer, slog.Default())

	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL:    cfg.OracleAPIURL,
		Model:      cfg.OracleModel,
		APIKey:     cfg.OracleAPIKey,
		Timeout:    cfg.OracleTimeout,
		MaxRetries: cfg.OracleMaxRetries,
		RetryDelay: cfg.OracleRetryDelay,
	}, slog.Default(), collector)

	transcriptService := transcript.NewService(
		transcriptRepo, suggestionRepo,
		habitService, todoService, reminderService, emotionService,
		oracleClient, sanitizer, collector, slog.Default(),
	)

	dailyService := daily.NewService(
		habitRepo, todoRepo, reminderRepo, emotionRepo, transcriptRepo,
		slog.Default(),
	)

	suggestionService := suggestion.NewService(
		suggestionRepo, habitService, todoService, reminderService,
		slog.Default(),
	)

	userService := user.NewService(userRepo)

	// 5. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.TranscriptRate = rate.Limit(float64(cfg.RateLimitTranscript) / 60.0)
	rateLimiterCfg.TranscriptBurst = cfg.RateLimitTranscript
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,
		UserLocks:   userlock.NewSet(),
		Logger:      slog.Default(),

		HealthChecker: db,
		Metrics:       collector,
		Gatherer:      registry,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		HabitService:      habitService,
		TodoService:       todoService,
		ReminderService:   reminderService,
		EmotionService:    emotionService,
		TranscriptService: transcriptService,
		DailyService:      dailyService,
		SuggestionService: suggestionService,
		UserService:       userService,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	// WriteTimeoutはオラクルのリトライ上限（タイムアウト20秒 × 最大4試行）を収める必要がある
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、期限切れデータのクリーンアップジョブを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	sessionRepo := repository.NewPostgresSessionRepo(db)
	suggestionRepo := repository.NewPostgresSuggestionRepo(db)
	todoRepo := repository.NewPostgresTodoRepo(db)

	// 3. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(sessionRepo, suggestionRepo, todoRepo, slog.Default())
	cleanupJob.RetentionDays = cfg.TodoRetentionDays

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
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
		slog.Int("todo_retention_days", cfg.TodoRetentionDays),
	)

	// 起動直後に1回実行し、以降は設定された間隔で繰り返す
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
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
