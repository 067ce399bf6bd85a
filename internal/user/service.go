// Package user はユーザープロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// Service はユーザープロフィールのサービス層。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Get はユーザープロフィールを取得する。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateTimezone はユーザーが申告したIANAタイムゾーンをプロフィールに記録する。
// リクエストヘッダーの解決と異なり、未知の識別子は保存せず拒否する。
func (s *Service) UpdateTimezone(ctx context.Context, userID, timezone string) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := time.LoadLocation(timezone); err != nil || timezone == "" {
		return nil, model.NewInvalidTimezoneError(timezone)
	}

	if err := s.userRepo.UpdateTimezone(ctx, userID, timezone); err != nil {
		return nil, fmt.Errorf("タイムゾーンの更新に失敗しました: %w", err)
	}

	slog.Info("user timezone updated",
		slog.String("user_id", userID),
		slog.String("timezone", timezone),
	)

	user.Timezone = timezone
	return user, nil
}
