package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string
	Email     string
	Name      string
	Timezone  string // ユーザーが最後に申告したIANAタイムゾーン。未申告の場合は空。
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// OAuthコールバック時に発行され、HTTP Only Cookieで受け渡す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
