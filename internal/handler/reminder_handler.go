package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/reminder"
)

// ReminderServiceInterface はリマインダーハンドラーが必要とするサービスインターフェース。
type ReminderServiceInterface interface {
	Create(ctx context.Context, userID, title string, remindAt time.Time, createdBy model.Source) (*model.Reminder, error)
	Get(ctx context.Context, userID, reminderID string) (*model.Reminder, error)
	List(ctx context.Context, userID string) ([]*model.Reminder, error)
	Update(ctx context.Context, userID, reminderID string, input reminder.UpdateInput) (*model.Reminder, error)
	Delete(ctx context.Context, userID, reminderID string) error
}

// ReminderHandler はリマインダー管理のHTTPハンドラー。
type ReminderHandler struct {
	service ReminderServiceInterface
}

// NewReminderHandler はReminderHandlerを生成する。
func NewReminderHandler(service ReminderServiceInterface) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type reminderCreateRequest struct {
	Title string `json:"title"`
	// RemindAt はISO 8601 UTC（Z付き）の通知時刻。
	RemindAt string `json:"remindAt"`
}

type reminderUpdateRequest struct {
	Title    *string `json:"title,omitempty"`
	RemindAt *string `json:"remindAt,omitempty"`
}

type reminderResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	RemindAt  time.Time `json:"remindAt"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReminderResponse(rem *model.Reminder) reminderResponse {
	return reminderResponse{
		ID:        rem.ID,
		Title:     rem.Title,
		RemindAt:  rem.RemindAt,
		CreatedBy: string(rem.CreatedBy),
		CreatedAt: rem.CreatedAt,
	}
}

func toReminderResponses(reminders []*model.Reminder) []reminderResponse {
	results := make([]reminderResponse, len(reminders))
	for i, rem := range reminders {
		results[i] = toReminderResponse(rem)
	}
	return results
}

// --- ハンドラー ---

// ListReminders はリマインダーの一覧を通知時刻昇順で返す。
// GET /api/reminders
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	reminders, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponses(reminders))
}

// CreateReminder はリマインダーを作成する。
// POST /api/reminders
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req reminderCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeInvalidRequest(w, "タイトルを指定してください。")
		return
	}

	remindAt, err := time.Parse(time.RFC3339, req.RemindAt)
	if err != nil {
		writeInvalidRequest(w, "remindAtはISO 8601形式で指定してください。")
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Title, remindAt, model.SourceUser)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReminderResponse(created))
}

// GetReminder はリマインダーの詳細を返す。
// GET /api/reminders/:id
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(found))
}

// UpdateReminder はリマインダーを部分更新する。
// PUT /api/reminders/:id
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req reminderUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := reminder.UpdateInput{Title: req.Title}
	if req.RemindAt != nil {
		remindAt, err := time.Parse(time.RFC3339, *req.RemindAt)
		if err != nil {
			writeInvalidRequest(w, "remindAtはISO 8601形式で指定してください。")
			return
		}
		input.RemindAt = &remindAt
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReminderResponse(updated))
}

// DeleteReminder はリマインダーを削除する。
// DELETE /api/reminders/:id
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
