package model

import "time"

// Reminder はユーザーのリマインダーを表す。
// 論理削除はなく、ユーザー操作で物理削除される。
type Reminder struct {
	ID        string
	UserID    string
	Title     string
	RemindAt  time.Time
	CreatedBy Source
	CreatedAt time.Time
}
