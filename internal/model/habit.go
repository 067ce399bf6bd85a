// Package model はドメインモデルを定義する。
package model

import "time"

// Frequency は習慣の実行頻度を表す。
type Frequency string

const (
	// FrequencyDaily は毎日実行する習慣。
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly は毎週実行する習慣。
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly は毎月実行する習慣。
	FrequencyMonthly Frequency = "monthly"
)

// IsValid は頻度が定義済みの値かどうかを判定する。
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Source はエンティティの作成元を表す。
// ユーザー自身の操作か、文字起こし解析（オラクル）による自動作成かを区別する。
type Source string

const (
	// SourceUser はユーザー操作による作成。
	SourceUser Source = "USER"
	// SourceOracle は文字起こし解析による自動作成。
	SourceOracle Source = "AI"
)

// Streak は習慣の連続達成記録を表す。
// Currentは常にLongest以下である。
type Streak struct {
	Current           int
	Longest           int
	LastCompletedDate *time.Time
}

// Habit はユーザーの習慣を表す。
// 削除は論理削除（IsDeleted）のみで、物理削除は行わない。
// オラクル由来の習慣はIsAccepted=falseで作成され、ユーザーの承認を待つ。
type Habit struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	Frequency    Frequency
	ReminderTime string // "HH:mm"形式。未設定の場合は空文字列。
	Streak       Streak
	IsDeleted    bool
	IsAccepted   bool
	CreatedBy    Source
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HabitCompletion は習慣の達成記録1件を表す。
// CompletedAtは達成したローカル日のローカル深夜0時を指す絶対時刻。
type HabitCompletion struct {
	HabitID     string
	UserID      string
	CompletedAt time.Time
}
