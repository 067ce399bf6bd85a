// Package reminder はリマインダー管理のドメインロジックを提供する。
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// Service はリマインダー管理のサービス層。
type Service struct {
	reminderRepo repository.ReminderRepository
	logger       *slog.Logger
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(reminderRepo repository.ReminderRepository, logger *slog.Logger) *Service {
	return &Service{
		reminderRepo: reminderRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create は新しいリマインダーを作成する。remindAtはUTCの絶対時刻。
func (s *Service) Create(ctx context.Context, userID, title string, remindAt time.Time, createdBy model.Source) (*model.Reminder, error) {
	if createdBy == "" {
		createdBy = model.SourceUser
	}

	reminder := &model.Reminder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		RemindAt:  remindAt.UTC(),
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("リマインダーの作成に失敗しました: %w", err)
	}

	s.logger.Info("reminder created", "reminder_id", reminder.ID, "user_id", userID, "created_by", createdBy)
	return reminder, nil
}

// Get は指定IDのリマインダーを取得する。
func (s *Service) Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	return s.findOwned(ctx, userID, reminderID)
}

// List はユーザーのリマインダー一覧を返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Reminder, error) {
	reminders, err := s.reminderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("リマインダー一覧の取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// ListUpcoming は通知時刻が現在以降のリマインダーをremind_at昇順で返す。
func (s *Service) ListUpcoming(ctx context.Context, userID string) ([]*model.Reminder, error) {
	reminders, err := s.reminderRepo.ListUpcoming(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("今後のリマインダーの取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// UpdateInput はリマインダー更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title    *string
	RemindAt *time.Time
}

// Update はリマインダーを部分更新する。
func (s *Service) Update(ctx context.Context, userID, reminderID string, input UpdateInput) (*model.Reminder, error) {
	reminder, err := s.findOwned(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		reminder.Title = *input.Title
	}
	if input.RemindAt != nil {
		reminder.RemindAt = input.RemindAt.UTC()
	}

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("リマインダーの更新に失敗しました: %w", err)
	}
	return reminder, nil
}

// Delete は指定IDのリマインダーを削除する。
func (s *Service) Delete(ctx context.Context, userID, reminderID string) error {
	if _, err := s.findOwned(ctx, userID, reminderID); err != nil {
		return err
	}

	if err := s.reminderRepo.Delete(ctx, reminderID); err != nil {
		return fmt.Errorf("リマインダーの削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, userID, reminderID string) (*model.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("リマインダーの取得に失敗しました: %w", err)
	}
	if reminder == nil || reminder.UserID != userID {
		return nil, model.NewReminderNotFoundError(reminderID)
	}
	return reminder, nil
}
