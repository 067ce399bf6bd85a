package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/daybook/internal/metrics"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/userlock"
)

// HealthChecker はヘルスチェックで疎通確認する依存のインターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, config AuthHandlerConfig) http.Handler {
	r := chi.NewRouter()
	h := NewAuthHandler(service, config)

	r.Route("/auth", func(r chi.Router) {
		// OAuthフロー
		r.Get("/google/login", h.Login)
		r.Get("/google/callback", h.Callback)

		// セッション管理
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})

	return r
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	UserLocks         *userlock.Set
	Logger            *slog.Logger

	// 観測
	HealthChecker HealthChecker
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	HabitService      HabitServiceInterface
	TodoService       TodoServiceInterface
	ReminderService   ReminderServiceInterface
	EmotionService    EmotionServiceInterface
	TranscriptService TranscriptServiceInterface
	DailyService      DailyServiceInterface
	SuggestionService SuggestionServiceInterface
	UserService       UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → CSRF
//	→ Session → Timezone → RateLimit(General)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションミドルウェアの外に配置する。
// 文字起こしの投稿のみ、専用レート制限とユーザー単位の処理ロックを追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	habitHandler := NewHabitHandler(deps.HabitService)
	todoHandler := NewTodoHandler(deps.TodoService)
	reminderHandler := NewReminderHandler(deps.ReminderService)
	emotionHandler := NewEmotionHandler(deps.EmotionService)
	transcriptHandler := NewTranscriptHandler(deps.TranscriptService)
	dailyHandler := NewDailyHandler(deps.DailyService)
	suggestionHandler := NewSuggestionHandler(deps.SuggestionService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	// Prometheusメトリクス
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(deps.Gatherer))
	}

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: CSRF → Session → Timezone → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewTimezoneMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 習慣管理
		r.Route("/api/habits", func(r chi.Router) {
			r.Get("/", habitHandler.ListHabits)
			r.Post("/", habitHandler.CreateHabit)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", habitHandler.GetHabit)
				r.Put("/", habitHandler.UpdateHabit)
				r.Delete("/", habitHandler.DeleteHabit)
				r.Post("/accept", habitHandler.AcceptHabit)
				r.Post("/complete", habitHandler.CompleteHabit)
			})
		})

		// タスク管理
		r.Route("/api/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.GetTodo)
				r.Put("/", todoHandler.UpdateTodo)
				r.Delete("/", todoHandler.DeleteTodo)
			})
		})

		// リマインダー管理
		r.Route("/api/reminders", func(r chi.Router) {
			r.Get("/", reminderHandler.ListReminders)
			r.Post("/", reminderHandler.CreateReminder)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", reminderHandler.GetReminder)
				r.Put("/", reminderHandler.UpdateReminder)
				r.Delete("/", reminderHandler.DeleteReminder)
			})
		})

		// 感情記録
		r.Route("/api/emotions", func(r chi.Router) {
			r.Get("/", emotionHandler.ListEmotions)
			r.Post("/", emotionHandler.CreateEmotion)
			r.Delete("/{id}", emotionHandler.DeleteEmotion)
		})

		// 文字起こし
		r.Route("/api/transcripts", func(r chi.Router) {
			// POST /api/transcripts - 投稿専用レート制限とユーザー単位処理ロックを追加
			r.With(
				deps.RateLimiter.TranscriptMiddleware(),
				middleware.NewUserLockMiddleware(deps.UserLocks, deps.Metrics),
			).Post("/", transcriptHandler.CreateTranscript)

			r.Get("/", transcriptHandler.ListTranscripts)
			r.Get("/{id}", transcriptHandler.GetTranscript)
			r.Delete("/{id}", transcriptHandler.DeleteTranscript)
		})

		// 日次ビュー
		r.Route("/api/daily", func(r chi.Router) {
			r.Get("/", dailyHandler.GetRange)
			r.Get("/today", dailyHandler.GetToday)
		})

		// 承認待ち提案
		r.Route("/api/suggestions", func(r chi.Router) {
			r.Get("/", suggestionHandler.GetSuggestions)
			r.Post("/commit", suggestionHandler.CommitSuggestions)
			r.Post("/discard", suggestionHandler.DiscardSuggestions)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", userHandler.GetProfile)
			r.Put("/me/timezone", userHandler.UpdateTimezone)
		})
	})

	return r
}

// NewHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
