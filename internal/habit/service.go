package habit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// Service は習慣管理のサービス層。
// CRUD、達成記録、ストリーク更新のビジネスロジックを提供する。
type Service struct {
	habitRepo repository.HabitRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(habitRepo repository.HabitRepository, logger *slog.Logger) *Service {
	return &Service{
		habitRepo: habitRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInput は習慣作成の入力。
type CreateInput struct {
	Title        string
	Description  string
	Frequency    string
	ReminderTime string
	CreatedBy    model.Source
}

// Create は新しい習慣を作成する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Habit, error) {
	frequency := model.Frequency(input.Frequency)
	if !frequency.IsValid() {
		return nil, model.NewInvalidFrequencyError(input.Frequency)
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = model.SourceUser
	}

	now := s.now().UTC()
	habit := &model.Habit{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		Frequency:    frequency,
		ReminderTime: input.ReminderTime,
		IsAccepted:   createdBy == model.SourceUser,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("習慣の作成に失敗しました: %w", err)
	}

	s.logger.Info("habit created", "habit_id", habit.ID, "user_id", userID, "created_by", createdBy)
	return habit, nil
}

// Get は指定IDの習慣を取得する。
func (s *Service) Get(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit, err := s.findOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// List はユーザーの有効な習慣一覧を返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Habit, error) {
	habits, err := s.habitRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("習慣一覧の取得に失敗しました: %w", err)
	}
	return habits, nil
}

// UpdateInput は習慣更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title        *string
	Description  *string
	Frequency    *string
	ReminderTime *string
}

// Update は習慣の編集可能フィールドを部分更新する。
func (s *Service) Update(ctx context.Context, userID, habitID string, input UpdateInput) (*model.Habit, error) {
	habit, err := s.findOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		habit.Title = *input.Title
	}
	if input.Description != nil {
		habit.Description = *input.Description
	}
	if input.Frequency != nil {
		frequency := model.Frequency(*input.Frequency)
		if !frequency.IsValid() {
			return nil, model.NewInvalidFrequencyError(*input.Frequency)
		}
		habit.Frequency = frequency
	}
	if input.ReminderTime != nil {
		habit.ReminderTime = *input.ReminderTime
	}

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("習慣の更新に失敗しました: %w", err)
	}
	return habit, nil
}

// Accept はオラクル由来の習慣を承認済みにする。
func (s *Service) Accept(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit, err := s.findOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.IsAccepted = true
	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("習慣の承認に失敗しました: %w", err)
	}
	return habit, nil
}

// Delete は習慣を論理削除する。達成履歴は保持される。
func (s *Service) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.findOwned(ctx, userID, habitID); err != nil {
		return err
	}

	if err := s.habitRepo.SoftDelete(ctx, habitID); err != nil {
		return fmt.Errorf("習慣の削除に失敗しました: %w", err)
	}

	s.logger.Info("habit soft deleted", "habit_id", habitID, "user_id", userID)
	return nil
}

// MarkCompleted はローカル日dayの達成を記録し、ストリークを更新する。
// 同じ日の達成が既に記録されている場合は何も変更せず現在の状態を返す（冪等）。
func (s *Service) MarkCompleted(ctx context.Context, userID, habitID, day string, loc *time.Location) (*model.Habit, error) {
	habit, err := s.findOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	return s.markCompleted(ctx, habit, day, loc)
}

// MarkCompletedByTitles はタイトル完全一致で習慣を検索し、それぞれの達成を記録する。
// 一致する習慣が存在しないタイトルは読み飛ばす。達成を記録した件数を返す。
func (s *Service) MarkCompletedByTitles(ctx context.Context, userID string, titles []string, day string, loc *time.Location) (int, error) {
	completed := 0
	for _, title := range titles {
		habit, err := s.habitRepo.FindActiveByTitle(ctx, userID, title)
		if err != nil {
			return completed, fmt.Errorf("タイトルによる習慣の検索に失敗しました: %w", err)
		}
		if habit == nil {
			s.logger.Debug("habit title not matched, skipping", "user_id", userID, "title", title)
			continue
		}

		if _, err := s.markCompleted(ctx, habit, day, loc); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (s *Service) markCompleted(ctx context.Context, habit *model.Habit, day string, loc *time.Location) (*model.Habit, error) {
	streak, changed := advanceStreak(habit.Streak, day, loc)
	if !changed {
		return habit, nil
	}

	midnight, err := localday.Midnight(day, loc)
	if err != nil {
		return nil, model.NewInvalidDateError(day)
	}

	inserted, err := s.habitRepo.AddCompletion(ctx, &model.HabitCompletion{
		HabitID:     habit.ID,
		UserID:      habit.UserID,
		CompletedAt: midnight,
	})
	if err != nil {
		return nil, fmt.Errorf("達成記録の追加に失敗しました: %w", err)
	}
	if !inserted {
		// 並行リクエストが先に同じ日を記録した場合
		return habit, nil
	}

	habit.Streak = streak
	habit.Streak.LastCompletedDate = &midnight
	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("ストリークの更新に失敗しました: %w", err)
	}

	s.logger.Info("habit completed",
		"habit_id", habit.ID, "user_id", habit.UserID, "day", day,
		"streak_current", habit.Streak.Current, "streak_longest", habit.Streak.Longest)
	return habit, nil
}

// findOwned はユーザーが所有する有効な習慣を取得する。
// 存在しない、削除済み、または他ユーザーの習慣の場合はHABIT_NOT_FOUNDを返す。
func (s *Service) findOwned(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit, err := s.habitRepo.FindByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}
	if habit == nil || habit.IsDeleted || habit.UserID != userID {
		return nil, model.NewHabitNotFoundError(habitID)
	}
	return habit, nil
}
