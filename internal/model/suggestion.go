package model

import "time"

// PendingSuggestions はユーザーの承認待ち提案を表す。
// ユーザーごとに高々1件で、コミットまたは破棄で削除される。
// ExpiresAtを過ぎたものはクリーンアップジョブで自動削除される。
type PendingSuggestions struct {
	ID        string
	UserID    string
	Habits    []HabitSuggestion
	Todos     []TodoSuggestion
	Reminders []ReminderSuggestion
	CreatedAt time.Time
	ExpiresAt time.Time
}
