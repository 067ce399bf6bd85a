package emotion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/security"
)

// --- モック ---

type mockEmotionRepo struct {
	records map[string]*model.EmotionalState
}

func newMockEmotionRepo() *mockEmotionRepo {
	return &mockEmotionRepo{records: make(map[string]*model.EmotionalState)}
}

func (m *mockEmotionRepo) FindByID(ctx context.Context, id string) (*model.EmotionalState, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *mockEmotionRepo) Create(ctx context.Context, state *model.EmotionalState) error {
	copied := *state
	m.records[state.ID] = &copied
	return nil
}

func (m *mockEmotionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return errors.New("emotion not found")
	}
	delete(m.records, id)
	return nil
}

func (m *mockEmotionRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.EmotionalState, error) {
	var records []*model.EmotionalState
	for _, record := range m.records {
		if record.UserID != userID {
			continue
		}
		if record.CreatedAt.Before(start) || record.CreatedAt.After(end) {
			continue
		}
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}

func newTestService(repo *mockEmotionRepo) *Service {
	return NewService(repo, security.NewTextSanitizer(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestCreate_ValidRecord は有効な感情記録が保存されることを検証する。
func TestCreate_ValidRecord(t *testing.T) {
	repo := newMockEmotionRepo()
	service := newTestService(repo)

	record, err := service.Create(context.Background(), "u1", "happy", 7, "良い一日だった")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.State != "happy" || record.Intensity != 7 {
		t.Errorf("record = %+v, want state=happy intensity=7", record)
	}
	if _, ok := repo.records[record.ID]; !ok {
		t.Error("リポジトリに保存されていない")
	}
}

// TestCreate_SanitizesNote はメモからマークアップが除去されることを検証する。
func TestCreate_SanitizesNote(t *testing.T) {
	service := newTestService(newMockEmotionRepo())

	record, err := service.Create(context.Background(), "u1", "calm", 5,
		`<script>alert("x")</script>静かな夜`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Note != "静かな夜" {
		t.Errorf("Note = %q, want %q", record.Note, "静かな夜")
	}
}

// TestCreate_RejectsInvalidInput は未定義ラベルと範囲外の強度が拒否されることを検証する。
func TestCreate_RejectsInvalidInput(t *testing.T) {
	service := newTestService(newMockEmotionRepo())
	ctx := context.Background()

	tests := []struct {
		name      string
		state     string
		intensity int
	}{
		{name: "未定義ラベル", state: "ecstatic", intensity: 5},
		{name: "強度が下限未満", state: "happy", intensity: 0},
		{name: "強度が上限超過", state: "happy", intensity: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "u1", tt.state, tt.intensity, "")
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidEmotion {
				t.Errorf("err = %v, want INVALID_EMOTION", err)
			}
		})
	}
}

// TestListRecent_FiltersByWindow は指定日数の範囲内の記録のみ返ることを検証する。
func TestListRecent_FiltersByWindow(t *testing.T) {
	repo := newMockEmotionRepo()
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	repo.records["e1"] = &model.EmotionalState{
		ID: "e1", UserID: "u1", State: "happy", Intensity: 6,
		CreatedAt: now.AddDate(0, 0, -2),
	}
	repo.records["e2"] = &model.EmotionalState{
		ID: "e2", UserID: "u1", State: "tired", Intensity: 4,
		CreatedAt: now.AddDate(0, 0, -10),
	}
	service := newTestService(repo)
	service.now = func() time.Time { return now }

	records, err := service.ListRecent(context.Background(), "u1", 7)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d件, want 1件", len(records))
	}
	if records[0].ID != "e1" {
		t.Errorf("records[0].ID = %q, want e1", records[0].ID)
	}
}

// TestDelete_NotFoundForOtherUser は他ユーザーの感情記録が削除できないことを検証する。
func TestDelete_NotFoundForOtherUser(t *testing.T) {
	repo := newMockEmotionRepo()
	repo.records["e1"] = &model.EmotionalState{ID: "e1", UserID: "u1", State: "happy", Intensity: 5}
	service := newTestService(repo)

	err := service.Delete(context.Background(), "u2", "e1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmotionNotFound {
		t.Errorf("err = %v, want EMOTION_NOT_FOUND", err)
	}

	if err := service.Delete(context.Background(), "u1", "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.records["e1"]; ok {
		t.Error("削除後も感情記録が残っている")
	}
}
