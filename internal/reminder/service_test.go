package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// --- モック ---

type mockReminderRepo struct {
	reminders map[string]*model.Reminder
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{reminders: make(map[string]*model.Reminder)}
}

func (m *mockReminderRepo) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	reminder, ok := m.reminders[id]
	if !ok {
		return nil, nil
	}
	copied := *reminder
	return &copied, nil
}

func (m *mockReminderRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Reminder, error) {
	var reminders []*model.Reminder
	for _, reminder := range m.reminders {
		if reminder.UserID == userID {
			copied := *reminder
			reminders = append(reminders, &copied)
		}
	}
	return reminders, nil
}

func (m *mockReminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	copied := *reminder
	m.reminders[reminder.ID] = &copied
	return nil
}

func (m *mockReminderRepo) Update(ctx context.Context, reminder *model.Reminder) error {
	if _, ok := m.reminders[reminder.ID]; !ok {
		return errors.New("reminder not found")
	}
	copied := *reminder
	m.reminders[reminder.ID] = &copied
	return nil
}

func (m *mockReminderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.reminders[id]; !ok {
		return errors.New("reminder not found")
	}
	delete(m.reminders, id)
	return nil
}

func (m *mockReminderRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Reminder, error) {
	return nil, nil
}

func (m *mockReminderRepo) ListUpcoming(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	var reminders []*model.Reminder
	for _, reminder := range m.reminders {
		if reminder.UserID == userID && !reminder.RemindAt.Before(now) {
			copied := *reminder
			reminders = append(reminders, &copied)
		}
	}
	return reminders, nil
}

func newTestService(repo *mockReminderRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestCreate_NormalizesToUTC は通知時刻がUTCに正規化されることを検証する。
func TestCreate_NormalizesToUTC(t *testing.T) {
	repo := newMockReminderRepo()
	service := newTestService(repo)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	remindAt := time.Date(2026, 8, 27, 9, 0, 0, 0, tokyo)

	reminder, err := service.Create(context.Background(), "u1", "薬を飲む", remindAt, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if reminder.RemindAt.Location() != time.UTC {
		t.Errorf("RemindAt location = %v, want UTC", reminder.RemindAt.Location())
	}
	if !reminder.RemindAt.Equal(remindAt) {
		t.Errorf("RemindAt = %v, want %v", reminder.RemindAt, remindAt)
	}
	if reminder.CreatedBy != model.SourceUser {
		t.Errorf("CreatedBy = %q, want %q", reminder.CreatedBy, model.SourceUser)
	}
}

// TestUpdate_PartialFields はnilでないフィールドのみ更新されることを検証する。
func TestUpdate_PartialFields(t *testing.T) {
	repo := newMockReminderRepo()
	original := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	repo.reminders["r1"] = &model.Reminder{
		ID:        "r1",
		UserID:    "u1",
		Title:     "薬を飲む",
		RemindAt:  original,
		CreatedBy: model.SourceUser,
	}
	service := newTestService(repo)

	title := "ビタミンを飲む"
	reminder, err := service.Update(context.Background(), "u1", "r1", UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if reminder.Title != "ビタミンを飲む" {
		t.Errorf("Title = %q, want %q", reminder.Title, "ビタミンを飲む")
	}
	if !reminder.RemindAt.Equal(original) {
		t.Errorf("RemindAt が変更されている: %v", reminder.RemindAt)
	}
}

// TestListUpcoming_ExcludesPast は通知時刻が過ぎたリマインダーが
// 含まれないことを検証する。
func TestListUpcoming_ExcludesPast(t *testing.T) {
	repo := newMockReminderRepo()
	service := newTestService(repo)

	fixed := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	repo.reminders["past"] = &model.Reminder{
		ID: "past", UserID: "u1", Title: "済んだ予定", RemindAt: fixed.Add(-time.Hour),
	}
	repo.reminders["future"] = &model.Reminder{
		ID: "future", UserID: "u1", Title: "薬を飲む", RemindAt: fixed.Add(time.Hour),
	}

	reminders, err := service.ListUpcoming(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(reminders) != 1 || reminders[0].ID != "future" {
		t.Errorf("reminders = %+v, want [future]", reminders)
	}
}

// TestGet_NotFoundForOtherUser は他ユーザーのリマインダーが見えないことを検証する。
func TestGet_NotFoundForOtherUser(t *testing.T) {
	repo := newMockReminderRepo()
	repo.reminders["r1"] = &model.Reminder{ID: "r1", UserID: "u1", Title: "薬を飲む"}
	service := newTestService(repo)

	_, err := service.Get(context.Background(), "u2", "r1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReminderNotFound {
		t.Errorf("err = %v, want REMINDER_NOT_FOUND", err)
	}
}

// TestDelete_RemovesOwnedReminder は所有リマインダーの削除を検証する。
func TestDelete_RemovesOwnedReminder(t *testing.T) {
	repo := newMockReminderRepo()
	repo.reminders["r1"] = &model.Reminder{ID: "r1", UserID: "u1", Title: "薬を飲む"}
	service := newTestService(repo)
	ctx := context.Background()

	if err := service.Delete(ctx, "u2", "r1"); err == nil {
		t.Error("他ユーザーによる削除がエラーにならなかった")
	}

	if err := service.Delete(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.reminders["r1"]; ok {
		t.Error("削除後もリマインダーが残っている")
	}
}
