package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/daybook/internal/metrics"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/userlock"
)

// NewUserLockMiddleware はユーザーごとの処理ロックを獲得するミドルウェアを返す。
// 同一ユーザーの処理が進行中の場合は待たずにLOCK_CONFLICTで拒否する。
// ロックはハンドラーがpanicした場合も含め、必ず解放される。
// SessionMiddlewareの後に配置すること。
func NewUserLockMiddleware(locks *userlock.Set, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			release, ok := locks.TryAcquire(userID)
			if !ok {
				collector.RecordLockConflict()
				slog.Warn("processing already in progress",
					slog.String("user_id", userID),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewLockConflictError())
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
