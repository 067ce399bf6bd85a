// Package emotion は感情記録のドメインロジックを提供する。
package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/security"
)

// Service は感情記録のサービス層。
type Service struct {
	emotionRepo repository.EmotionRepository
	sanitizer   security.TextSanitizerService
	logger      *slog.Logger
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(emotionRepo repository.EmotionRepository, sanitizer security.TextSanitizerService, logger *slog.Logger) *Service {
	return &Service{
		emotionRepo: emotionRepo,
		sanitizer:   sanitizer,
		logger:      logger,
		now:         time.Now,
	}
}

// Create は新しい感情記録を作成する。
// stateは定義済みラベル、intensityは1〜10でなければならない。
func (s *Service) Create(ctx context.Context, userID, state string, intensity int, note string) (*model.EmotionalState, error) {
	if !model.IsValidEmotionLabel(state) {
		return nil, model.NewInvalidEmotionError(state)
	}
	if intensity < model.MinEmotionIntensity || intensity > model.MaxEmotionIntensity {
		return nil, model.NewInvalidEmotionError(fmt.Sprintf("%s (intensity=%d)", state, intensity))
	}

	record := &model.EmotionalState{
		ID:        uuid.New().String(),
		UserID:    userID,
		State:     state,
		Intensity: intensity,
		Note:      s.sanitizer.Sanitize(note),
		CreatedAt: s.now().UTC(),
	}

	if err := s.emotionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("感情記録の作成に失敗しました: %w", err)
	}

	s.logger.Info("emotional state recorded", "emotion_id", record.ID, "user_id", userID, "state", state)
	return record, nil
}

// Delete は指定IDの感情記録を削除する。
func (s *Service) Delete(ctx context.Context, userID, emotionID string) error {
	record, err := s.emotionRepo.FindByID(ctx, emotionID)
	if err != nil {
		return fmt.Errorf("感情記録の取得に失敗しました: %w", err)
	}
	if record == nil || record.UserID != userID {
		return model.NewEmotionNotFoundError(emotionID)
	}

	if err := s.emotionRepo.Delete(ctx, emotionID); err != nil {
		return fmt.Errorf("感情記録の削除に失敗しました: %w", err)
	}
	return nil
}

// ListRecent は直近days日間の感情記録をcreated_at昇順で返す。
func (s *Service) ListRecent(ctx context.Context, userID string, days int) ([]*model.EmotionalState, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)

	records, err := s.emotionRepo.ListInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("感情記録の取得に失敗しました: %w", err)
	}
	return records, nil
}
