package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresSuggestionRepo はPostgreSQLを使用した承認待ち提案リポジトリ。
// 提案リストはJSONBカラムに格納する。参照は常にユーザー単位のため
// 正規化せずドキュメントとして扱う。
type PostgresSuggestionRepo struct {
	db *sql.DB
}

// NewPostgresSuggestionRepo はPostgresSuggestionRepoを生成する。
func NewPostgresSuggestionRepo(db *sql.DB) *PostgresSuggestionRepo {
	return &PostgresSuggestionRepo{db: db}
}

// FindByUserID はユーザーの承認待ち提案を取得する。見つからない場合はnilを返す。
func (r *PostgresSuggestionRepo) FindByUserID(ctx context.Context, userID string) (*model.PendingSuggestions, error) {
	suggestions := &model.PendingSuggestions{}
	var habitsJSON, todosJSON, remindersJSON []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, habits, todos, reminders, created_at, expires_at
		 FROM pending_suggestions WHERE user_id = $1`,
		userID,
	).Scan(
		&suggestions.ID, &suggestions.UserID,
		&habitsJSON, &todosJSON, &remindersJSON,
		&suggestions.CreatedAt, &suggestions.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("承認待ち提案の取得に失敗しました: %w", err)
	}

	if err := json.Unmarshal(habitsJSON, &suggestions.Habits); err != nil {
		return nil, fmt.Errorf("習慣提案の復元に失敗しました: %w", err)
	}
	if err := json.Unmarshal(todosJSON, &suggestions.Todos); err != nil {
		return nil, fmt.Errorf("タスク提案の復元に失敗しました: %w", err)
	}
	if err := json.Unmarshal(remindersJSON, &suggestions.Reminders); err != nil {
		return nil, fmt.Errorf("リマインダー提案の復元に失敗しました: %w", err)
	}

	return suggestions, nil
}

// Upsert はユーザーの承認待ち提案を置き換える。ユーザーごとに高々1件。
func (r *PostgresSuggestionRepo) Upsert(ctx context.Context, suggestions *model.PendingSuggestions) error {
	habitsJSON, err := json.Marshal(suggestions.Habits)
	if err != nil {
		return fmt.Errorf("習慣提案の変換に失敗しました: %w", err)
	}
	todosJSON, err := json.Marshal(suggestions.Todos)
	if err != nil {
		return fmt.Errorf("タスク提案の変換に失敗しました: %w", err)
	}
	remindersJSON, err := json.Marshal(suggestions.Reminders)
	if err != nil {
		return fmt.Errorf("リマインダー提案の変換に失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pending_suggestions (id, user_id, habits, todos, reminders, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		    habits = EXCLUDED.habits,
		    todos = EXCLUDED.todos,
		    reminders = EXCLUDED.reminders,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at`,
		suggestions.ID, suggestions.UserID,
		habitsJSON, todosJSON, remindersJSON,
		suggestions.CreatedAt, suggestions.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("承認待ち提案の保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの承認待ち提案を削除する。
func (r *PostgresSuggestionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_suggestions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("承認待ち提案の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れの提案を削除し、削除件数を返す。
func (r *PostgresSuggestionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_suggestions WHERE expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("期限切れ提案の削除に失敗しました: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の確認に失敗しました: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SuggestionRepository = (*PostgresSuggestionRepo)(nil)
