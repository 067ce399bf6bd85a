// Package suggestion は承認待ち提案の取得・反映・破棄を提供する。
//
// 解析パイプラインで適用できなかった新規提案は承認待ちとして保持され、
// クライアントはその中から選んだものを反映（コミット）するか、
// まとめて破棄できる。コミット・破棄後は承認待ち提案が削除される。
package suggestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/daybook/internal/habit"
	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/todo"
)

// HabitCreator は提案反映に必要な習慣操作。
type HabitCreator interface {
	Create(ctx context.Context, userID string, input habit.CreateInput) (*model.Habit, error)
}

// TodoCreator は提案反映に必要なタスク操作。
type TodoCreator interface {
	Create(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error)
}

// ReminderCreator は提案反映に必要なリマインダー操作。
type ReminderCreator interface {
	Create(ctx context.Context, userID, title string, remindAt time.Time, createdBy model.Source) (*model.Reminder, error)
}

// Service は承認待ち提案のサービス層。
type Service struct {
	suggestionRepo repository.SuggestionRepository
	habits         HabitCreator
	todos          TodoCreator
	reminders      ReminderCreator
	logger         *slog.Logger
	now            func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	suggestionRepo repository.SuggestionRepository,
	habits HabitCreator,
	todos TodoCreator,
	reminders ReminderCreator,
	logger *slog.Logger,
) *Service {
	return &Service{
		suggestionRepo: suggestionRepo,
		habits:         habits,
		todos:          todos,
		reminders:      reminders,
		logger:         logger,
		now:            time.Now,
	}
}

// Get はユーザーの承認待ち提案を返す。
// 存在しない場合と期限切れの場合はSUGGESTIONS_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.PendingSuggestions, error) {
	pending, err := s.suggestionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("承認待ち提案の取得に失敗しました: %w", err)
	}
	if pending == nil || s.now().After(pending.ExpiresAt) {
		return nil, model.NewSuggestionsNotFoundError()
	}
	return pending, nil
}

// CommitInput はクライアントが選択した反映対象の提案。
type CommitInput struct {
	Habits    []model.HabitSuggestion    `json:"habits"`
	Todos     []model.TodoSuggestion     `json:"todos"`
	Reminders []model.ReminderSuggestion `json:"reminders"`
}

// CommitResult は反映された件数。
type CommitResult struct {
	Habits    int `json:"habits"`
	Todos     int `json:"todos"`
	Reminders int `json:"reminders"`
}

// Commit は選択された提案をエンティティとして作成し、承認待ち提案を削除する。
// 作成はベストエフォートで行い、個別の失敗は件数に含めず続行する。
func (s *Service) Commit(ctx context.Context, userID string, input CommitInput, loc *time.Location) (*CommitResult, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	result := &CommitResult{}

	for _, suggestion := range input.Habits {
		_, err := s.habits.Create(ctx, userID, habit.CreateInput{
			Title:        suggestion.Title,
			Description:  suggestion.Description,
			Frequency:    suggestion.Frequency,
			ReminderTime: suggestion.ReminderTime,
			CreatedBy:    model.SourceOracle,
		})
		if err != nil {
			s.logger.Warn("failed to commit suggested habit", "user_id", userID, "title", suggestion.Title, "error", err)
			continue
		}
		result.Habits++
	}

	for _, suggestion := range input.Todos {
		todoInput := todo.CreateInput{
			Title:     suggestion.Title,
			Priority:  suggestion.Priority,
			CreatedBy: model.SourceOracle,
		}
		if suggestion.DueDate != "" {
			if due, err := localday.Midnight(suggestion.DueDate, loc); err == nil {
				todoInput.DueDate = &due
			}
		}
		if _, err := s.todos.Create(ctx, userID, todoInput); err != nil {
			s.logger.Warn("failed to commit suggested todo", "user_id", userID, "title", suggestion.Title, "error", err)
			continue
		}
		result.Todos++
	}

	for _, suggestion := range input.Reminders {
		remindAt, err := time.Parse(time.RFC3339, suggestion.RemindAt)
		if err != nil {
			s.logger.Warn("suggested reminder has invalid time", "user_id", userID, "remind_at", suggestion.RemindAt)
			continue
		}
		if _, err := s.reminders.Create(ctx, userID, suggestion.Title, remindAt, model.SourceOracle); err != nil {
			s.logger.Warn("failed to commit suggested reminder", "user_id", userID, "title", suggestion.Title, "error", err)
			continue
		}
		result.Reminders++
	}

	if err := s.suggestionRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("承認待ち提案の削除に失敗しました: %w", err)
	}

	s.logger.Info("suggestions committed",
		"user_id", userID, "habits", result.Habits, "todos", result.Todos, "reminders", result.Reminders)
	return result, nil
}

// Discard は承認待ち提案を反映せずに削除する。
func (s *Service) Discard(ctx context.Context, userID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	if err := s.suggestionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("承認待ち提案の削除に失敗しました: %w", err)
	}
	s.logger.Info("suggestions discarded", "user_id", userID)
	return nil
}
