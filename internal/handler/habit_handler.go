package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/habit"
	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
)

// HabitServiceInterface は習慣ハンドラーが必要とするサービスインターフェース。
type HabitServiceInterface interface {
	Create(ctx context.Context, userID string, input habit.CreateInput) (*model.Habit, error)
	Get(ctx context.Context, userID, habitID string) (*model.Habit, error)
	List(ctx context.Context, userID string) ([]*model.Habit, error)
	Update(ctx context.Context, userID, habitID string, input habit.UpdateInput) (*model.Habit, error)
	Accept(ctx context.Context, userID, habitID string) (*model.Habit, error)
	Delete(ctx context.Context, userID, habitID string) error
	MarkCompleted(ctx context.Context, userID, habitID, day string, loc *time.Location) (*model.Habit, error)
}

// HabitHandler は習慣管理のHTTPハンドラー。
type HabitHandler struct {
	service HabitServiceInterface
}

// NewHabitHandler はHabitHandlerを生成する。
func NewHabitHandler(service HabitServiceInterface) *HabitHandler {
	return &HabitHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type habitCreateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminderTime,omitempty"`
}

type habitUpdateRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Frequency    *string `json:"frequency,omitempty"`
	ReminderTime *string `json:"reminderTime,omitempty"`
}

type habitCompleteRequest struct {
	// Date は達成したローカル日（YYYY-MM-DD）。省略時は今日。
	Date string `json:"date,omitempty"`
}

type streakResponse struct {
	Current           int        `json:"current"`
	Longest           int        `json:"longest"`
	LastCompletedDate *time.Time `json:"lastCompletedDate,omitempty"`
}

type habitResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Frequency    string         `json:"frequency"`
	ReminderTime string         `json:"reminderTime,omitempty"`
	Streak       streakResponse `json:"streak"`
	IsAccepted   bool           `json:"isAccepted"`
	CreatedBy    string         `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func toHabitResponse(h *model.Habit) habitResponse {
	return habitResponse{
		ID:           h.ID,
		Title:        h.Title,
		Description:  h.Description,
		Frequency:    string(h.Frequency),
		ReminderTime: h.ReminderTime,
		Streak: streakResponse{
			Current:           h.Streak.Current,
			Longest:           h.Streak.Longest,
			LastCompletedDate: h.Streak.LastCompletedDate,
		},
		IsAccepted: h.IsAccepted,
		CreatedBy:  string(h.CreatedBy),
		CreatedAt:  h.CreatedAt,
	}
}

func toHabitResponses(habits []*model.Habit) []habitResponse {
	results := make([]habitResponse, len(habits))
	for i, h := range habits {
		results[i] = toHabitResponse(h)
	}
	return results
}

// --- ハンドラー ---

// ListHabits は有効な習慣の一覧を返す。
// GET /api/habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	habits, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponses(habits))
}

// CreateHabit は習慣を作成する。
// POST /api/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req habitCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeInvalidRequest(w, "タイトルを指定してください。")
		return
	}

	created, err := h.service.Create(r.Context(), userID, habit.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    req.Frequency,
		ReminderTime: req.ReminderTime,
		CreatedBy:    model.SourceUser,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitResponse(created))
}

// GetHabit は習慣の詳細を返す。
// GET /api/habits/:id
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(found))
}

// UpdateHabit は習慣を部分更新する。
// PUT /api/habits/:id
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req habitUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), habit.UpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Frequency:    req.Frequency,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(updated))
}

// DeleteHabit は習慣を論理削除する。達成履歴は保持される。
// DELETE /api/habits/:id
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
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

// AcceptHabit はオラクル提案の習慣を承認する。
// POST /api/habits/:id/accept
func (h *HabitHandler) AcceptHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	accepted, err := h.service.Accept(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(accepted))
}

// CompleteHabit は習慣の達成を記録する。同一日の重複記録は冪等に無視される。
// POST /api/habits/:id/complete
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req habitCompleteRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	_, loc := middleware.TimezoneFromContext(r.Context())
	day := req.Date
	if day == "" {
		day = localday.Today(time.Now(), loc)
	} else if _, err := localday.ParseDay(day); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(day))
		return
	}

	completed, err := h.service.MarkCompleted(r.Context(), userID, chi.URLParam(r, "id"), day, loc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(completed))
}
