package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimezoneMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantName string
	}{
		{name: "有効なタイムゾーン", header: "Asia/Tokyo", wantName: "Asia/Tokyo"},
		{name: "ヘッダーなしはUTC", header: "", wantName: "UTC"},
		{name: "不正な名前はUTCにフォールバック", header: "Mars/Olympus", wantName: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			var gotLoc *time.Location
			handler := NewTimezoneMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotName, gotLoc = TimezoneFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/daily", nil)
			if tt.header != "" {
				req.Header.Set(timezoneHeaderName, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotName != tt.wantName {
				t.Errorf("timezone = %q, want %q", gotName, tt.wantName)
			}
			if gotLoc == nil {
				t.Fatal("location = nil")
			}
		})
	}
}

func TestTimezoneFromContext_WithoutMiddleware(t *testing.T) {
	name, loc := TimezoneFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	if name != "UTC" || loc != time.UTC {
		t.Errorf("timezone = %q, %v, want UTC", name, loc)
	}
}
