// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateTimezone はユーザーが最後に申告したタイムゾーンを記録する。
	UpdateTimezone(ctx context.Context, id, timezone string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HabitRepository は習慣データの永続化インターフェース。
type HabitRepository interface {
	// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
	// 論理削除済みの習慣も返す。呼び出し側でIsDeletedを確認すること。
	FindByID(ctx context.Context, id string) (*model.Habit, error)

	// ListActiveByUserID はユーザーの有効な（論理削除されていない）習慣一覧を返す。
	ListActiveByUserID(ctx context.Context, userID string) ([]*model.Habit, error)

	// FindActiveByTitle はユーザーの有効な習慣をタイトル完全一致で検索する。
	// 見つからない場合はnilを返す。
	FindActiveByTitle(ctx context.Context, userID, title string) (*model.Habit, error)

	// Create は習慣を作成する。
	Create(ctx context.Context, habit *model.Habit) error

	// Update は習慣の編集可能フィールドとストリークを更新する。
	Update(ctx context.Context, habit *model.Habit) error

	// SoftDelete は習慣を論理削除する。達成履歴は保持される。
	SoftDelete(ctx context.Context, id string) error

	// AddCompletion は達成記録を冪等に追加する。
	// 同一の(habit_id, completed_at)が既に存在する場合は何もせずfalseを返す。
	AddCompletion(ctx context.Context, completion *model.HabitCompletion) (bool, error)

	// ListCompletionsInRange はユーザーの達成記録をUTC範囲[start, end]で取得する。
	// completed_at昇順で返す。
	ListCompletionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.HabitCompletion, error)
}

// TodoRepository はタスクデータの永続化インターフェース。
type TodoRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)

	// ListOpenByUserID はユーザーの未完了タスク一覧をcreated_at昇順で返す。
	ListOpenByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// Update はタスクの編集可能フィールドと完了状態を更新する。
	Update(ctx context.Context, todo *model.Todo) error

	// Delete は指定IDのタスクを物理削除する。
	Delete(ctx context.Context, id string) error

	// ListCompletedInRange は完了日時がUTC範囲[start, end]に入るタスクを返す。
	ListCompletedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error)

	// ListCreatedInRange は作成日時がUTC範囲[start, end]に入るタスクを返す。
	ListCreatedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error)

	// MarkCompletedByTitles は未完了タスクのうちタイトルが完全一致（大文字小文字を区別）
	// するものを完了にし、完了日時を設定する。更新件数を返す。
	MarkCompletedByTitles(ctx context.Context, userID string, titles []string, completedAt time.Time) (int64, error)

	// DeleteOlderThan は作成日時がcutoffより古いタスクを削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReminderRepository はリマインダーデータの永続化インターフェース。
type ReminderRepository interface {
	// FindByID は指定IDのリマインダーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Reminder, error)

	// ListByUserID はユーザーのリマインダー一覧をremind_at昇順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Reminder, error)

	// ListUpcoming はremind_atがnow以降のリマインダーをremind_at昇順で返す。
	ListUpcoming(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error)

	// Create はリマインダーを作成する。
	Create(ctx context.Context, reminder *model.Reminder) error

	// Update はリマインダーを更新する。
	Update(ctx context.Context, reminder *model.Reminder) error

	// Delete は指定IDのリマインダーを物理削除する。
	Delete(ctx context.Context, id string) error

	// ListInRange は通知時刻がUTC範囲[start, end]に入るリマインダーを返す。
	ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Reminder, error)
}

// EmotionRepository は感情記録データの永続化インターフェース。
type EmotionRepository interface {
	// FindByID は指定IDの感情記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.EmotionalState, error)

	// Create は感情記録を作成する。
	Create(ctx context.Context, state *model.EmotionalState) error

	// Delete は指定IDの感情記録を物理削除する。
	Delete(ctx context.Context, id string) error

	// ListInRange は記録日時がUTC範囲[start, end]に入る感情記録を
	// created_at昇順で返す。
	ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.EmotionalState, error)
}

// TranscriptRepository は文字起こしデータの永続化インターフェース。
type TranscriptRepository interface {
	// FindByID は指定IDの文字起こしを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Transcript, error)

	// Create は生の文字起こしテキストを保存する。解析前に必ず呼ぶこと。
	Create(ctx context.Context, transcript *model.Transcript) error

	// UpdateResult は解析結果（構造化応答と要約）を記録する。
	// 処理完了時に一度だけ呼ばれる。
	UpdateResult(ctx context.Context, id string, response []byte, summary string) error

	// ListInRange は作成日時がUTC範囲[start, end]に入る文字起こしを
	// created_at昇順で返す。
	ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Transcript, error)

	// ListByUserID はユーザーの文字起こし一覧をcreated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Transcript, error)

	// Delete は指定IDの文字起こしを物理削除する。
	Delete(ctx context.Context, id string) error
}

// SuggestionRepository は承認待ち提案の永続化インターフェース。
type SuggestionRepository interface {
	// FindByUserID はユーザーの承認待ち提案を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.PendingSuggestions, error)

	// Upsert はユーザーの承認待ち提案を置き換える。ユーザーごとに高々1件。
	Upsert(ctx context.Context, suggestions *model.PendingSuggestions) error

	// DeleteByUserID はユーザーの承認待ち提案を削除する。
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired は期限切れの提案を削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
