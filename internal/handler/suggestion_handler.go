package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/suggestion"
)

// SuggestionServiceInterface は承認待ち提案ハンドラーが必要とするサービスインターフェース。
type SuggestionServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.PendingSuggestions, error)
	Commit(ctx context.Context, userID string, input suggestion.CommitInput, loc *time.Location) (*suggestion.CommitResult, error)
	Discard(ctx context.Context, userID string) error
}

// SuggestionHandler は承認待ち提案のHTTPハンドラー。
type SuggestionHandler struct {
	service SuggestionServiceInterface
}

// NewSuggestionHandler はSuggestionHandlerを生成する。
func NewSuggestionHandler(service SuggestionServiceInterface) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type suggestionCommitRequest struct {
	Habits    []model.HabitSuggestion    `json:"habits"`
	Todos     []model.TodoSuggestion     `json:"todos"`
	Reminders []model.ReminderSuggestion `json:"reminders"`
}

type suggestionCommitResponse struct {
	Habits    int `json:"habits"`
	Todos     int `json:"todos"`
	Reminders int `json:"reminders"`
}

type pendingSuggestionsResponse struct {
	Habits    []model.HabitSuggestion    `json:"habits"`
	Todos     []model.TodoSuggestion     `json:"todos"`
	Reminders []model.ReminderSuggestion `json:"reminders"`
	CreatedAt time.Time                  `json:"createdAt"`
	ExpiresAt time.Time                  `json:"expiresAt"`
}

func toPendingSuggestionsResponse(pending *model.PendingSuggestions) pendingSuggestionsResponse {
	resp := pendingSuggestionsResponse{
		Habits:    pending.Habits,
		Todos:     pending.Todos,
		Reminders: pending.Reminders,
		CreatedAt: pending.CreatedAt,
		ExpiresAt: pending.ExpiresAt,
	}
	if resp.Habits == nil {
		resp.Habits = []model.HabitSuggestion{}
	}
	if resp.Todos == nil {
		resp.Todos = []model.TodoSuggestion{}
	}
	if resp.Reminders == nil {
		resp.Reminders = []model.ReminderSuggestion{}
	}
	return resp
}

// --- ハンドラー ---

// GetSuggestions は承認待ち提案を返す。
// GET /api/suggestions
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	pending, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPendingSuggestionsResponse(pending))
}

// CommitSuggestions は選択した提案を反映し、承認待ち提案を削除する。
// POST /api/suggestions/commit
func (h *SuggestionHandler) CommitSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req suggestionCommitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, loc := middleware.TimezoneFromContext(r.Context())
	result, err := h.service.Commit(r.Context(), userID, suggestion.CommitInput{
		Habits:    req.Habits,
		Todos:     req.Todos,
		Reminders: req.Reminders,
	}, loc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestionCommitResponse{
		Habits:    result.Habits,
		Todos:     result.Todos,
		Reminders: result.Reminders,
	})
}

// DiscardSuggestions は承認待ち提案を反映せずに削除する。
// POST /api/suggestions/discard
func (h *SuggestionHandler) DiscardSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Discard(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
