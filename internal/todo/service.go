// Package todo はタスク管理のドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// Service はタスク管理のサービス層。
type Service struct {
	todoRepo repository.TodoRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, logger *slog.Logger) *Service {
	return &Service{
		todoRepo: todoRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInput はタスク作成の入力。
type CreateInput struct {
	Title     string
	DueDate   *time.Time
	Priority  int
	CreatedBy model.Source
}

// Create は新しいタスクを作成する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Todo, error) {
	priority := input.Priority
	if priority == 0 {
		priority = model.DefaultTodoPriority
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = model.SourceUser
	}

	todo := &model.Todo{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     input.Title,
		DueDate:   input.DueDate,
		Priority:  priority,
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	s.logger.Info("todo created", "todo_id", todo.ID, "user_id", userID, "created_by", createdBy)
	return todo, nil
}

// Get は指定IDのタスクを取得する。
func (s *Service) Get(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	return s.findOwned(ctx, userID, todoID)
}

// ListOpen はユーザーの未完了タスク一覧を返す。
func (s *Service) ListOpen(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListOpenByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// UpdateInput はタスク更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title     *string
	Completed *bool
	DueDate   *time.Time
	Priority  *int
}

// Update はタスクを部分更新する。
// Completedをtrueにすると完了日時が現在時刻に設定され、falseに戻すとクリアされる。
func (s *Service) Update(ctx context.Context, userID, todoID string, input UpdateInput) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Completed != nil && *input.Completed != todo.Completed {
		todo.Completed = *input.Completed
		if todo.Completed {
			now := s.now().UTC()
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}
	}
	if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if input.Priority != nil {
		todo.Priority = *input.Priority
	}

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return todo, nil
}

// Delete は指定IDのタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, todoID string) error {
	if _, err := s.findOwned(ctx, userID, todoID); err != nil {
		return err
	}

	if err := s.todoRepo.Delete(ctx, todoID); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	return nil
}

// MarkCompletedByTitles は未完了タスクのうちタイトルが完全一致するものを完了にする。
// 大文字小文字を区別する。一致しないタイトルは無視される。完了件数を返す。
func (s *Service) MarkCompletedByTitles(ctx context.Context, userID string, titles []string) (int64, error) {
	if len(titles) == 0 {
		return 0, nil
	}

	completed, err := s.todoRepo.MarkCompletedByTitles(ctx, userID, titles, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("タイトルによるタスク完了に失敗しました: %w", err)
	}

	if completed < int64(len(titles)) {
		s.logger.Debug("some todo titles not matched",
			"user_id", userID, "requested", len(titles), "completed", completed)
	}
	return completed, nil
}

func (s *Service) findOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if todo == nil || todo.UserID != userID {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	return todo, nil
}
