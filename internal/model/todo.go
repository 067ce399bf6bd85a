package model

import "time"

// DefaultTodoPriority は優先度未指定時のデフォルト値。
const DefaultTodoPriority = 5

// Todo はユーザーのタスクを表す。
// 優先度は1（最高）〜10（最低）。
// 作成から保持期間（デフォルト30日）を超えたものはクリーンアップジョブで削除される。
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Completed   bool
	CompletedAt *time.Time
	DueDate     *time.Time // 日付のみ意味を持つ。時刻部分はローカル深夜0時。
	Priority    int
	CreatedBy   Source
	CreatedAt   time.Time
}
