package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/daybook/internal/localday"
)

// timezoneHeaderName はクライアントがタイムゾーンを申告するヘッダー名。
const timezoneHeaderName = "X-Timezone"

// timezoneContextKey はリクエストコンテキストにタイムゾーンを格納するためのキー。
var timezoneContextKey = contextKey("timezone")

// timezoneInfo はコンテキストに格納するタイムゾーン情報。
type timezoneInfo struct {
	name string
	loc  *time.Location
}

// NewTimezoneMiddleware はX-Timezoneヘッダーからタイムゾーンを解決し、
// リクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーが欠落している場合と名前が解決できない場合はUTCにフォールバックし、
// リクエストは拒否しない。
func NewTimezoneMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.Header.Get(timezoneHeaderName)
			loc := localday.Location(name)
			if name == "" || loc == time.UTC {
				name = "UTC"
			}

			ctx := context.WithValue(r.Context(), timezoneContextKey, timezoneInfo{name: name, loc: loc})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TimezoneFromContext はリクエストコンテキストからタイムゾーンを取得する。
// ミドルウェアを通過していないコンテキストではUTCを返す。
func TimezoneFromContext(ctx context.Context) (string, *time.Location) {
	info, ok := ctx.Value(timezoneContextKey).(timezoneInfo)
	if !ok {
		return "UTC", time.UTC
	}
	return info.name, info.loc
}

// ContextWithTimezone はコンテキストにタイムゾーンを注入する。テスト用。
func ContextWithTimezone(ctx context.Context, name string, loc *time.Location) context.Context {
	return context.WithValue(ctx, timezoneContextKey, timezoneInfo{name: name, loc: loc})
}
