// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 期限切れセッション、期限切れの承認待ち提案、保持期間（デフォルト30日）を
// 超過した古いタスクを日次バッチで削除する。
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SessionPruner は期限切れセッションの削除インターフェース。
type SessionPruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SuggestionPruner は期限切れの承認待ち提案の削除インターフェース。
type SuggestionPruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TodoPruner は古いタスクの削除インターフェース。
type TodoPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は期限切れデータの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions      SessionPruner
	suggestions   SuggestionPruner
	todos         TodoPruner
	logger        *slog.Logger
	now           func() time.Time
	RetentionDays int // タスクの保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は30日。
func NewCleanupJob(sessions SessionPruner, suggestions SuggestionPruner, todos TodoPruner, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions:      sessions,
		suggestions:   suggestions,
		todos:         todos,
		logger:        logger,
		now:           time.Now,
		RetentionDays: 30,
	}
}

// Run は期限切れデータを削除する。
// 個別の削除対象でエラーが発生しても残りの削除は続行し、最後にまとめて返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	var errs []error

	var sessionCount, suggestionCount, todoCount int64

	if j.sessions != nil {
		count, err := j.sessions.DeleteExpired(ctx, start)
		if err != nil {
			j.logger.Error("期限切れセッションの削除に失敗しました",
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("期限切れセッションの削除に失敗: %w", err))
		} else {
			sessionCount = count
		}
	}

	if j.suggestions != nil {
		count, err := j.suggestions.DeleteExpired(ctx, start)
		if err != nil {
			j.logger.Error("期限切れ提案の削除に失敗しました",
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("期限切れ提案の削除に失敗: %w", err))
		} else {
			suggestionCount = count
		}
	}

	if j.todos != nil {
		cutoff := start.AddDate(0, 0, -j.RetentionDays)
		count, err := j.todos.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			j.logger.Error("古いタスクの削除に失敗しました",
				slog.String("error", err.Error()),
				slog.Int("retention_days", j.RetentionDays),
			)
			errs = append(errs, fmt.Errorf("古いタスクの削除に失敗: %w", err))
		} else {
			todoCount = count
		}
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", sessionCount),
		slog.Int64("deleted_suggestions", suggestionCount),
		slog.Int64("deleted_todos", todoCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return errors.Join(errs...)
}
