package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/model"
)

// defaultEmotionDays は感情記録一覧のデフォルト取得期間（日数）。
const defaultEmotionDays = 7

// EmotionServiceInterface は感情記録ハンドラーが必要とするサービスインターフェース。
type EmotionServiceInterface interface {
	Create(ctx context.Context, userID, state string, intensity int, note string) (*model.EmotionalState, error)
	Delete(ctx context.Context, userID, emotionID string) error
	ListRecent(ctx context.Context, userID string, days int) ([]*model.EmotionalState, error)
}

// EmotionHandler は感情記録のHTTPハンドラー。
type EmotionHandler struct {
	service EmotionServiceInterface
}

// NewEmotionHandler はEmotionHandlerを生成する。
func NewEmotionHandler(service EmotionServiceInterface) *EmotionHandler {
	return &EmotionHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type emotionCreateRequest struct {
	State     string `json:"state"`
	Intensity int    `json:"intensity"`
	Note      string `json:"note,omitempty"`
}

type emotionResponse struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Intensity int       `json:"intensity"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEmotionResponse(e *model.EmotionalState) emotionResponse {
	return emotionResponse{
		ID:        e.ID,
		State:     e.State,
		Intensity: e.Intensity,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

func toEmotionResponses(emotions []*model.EmotionalState) []emotionResponse {
	results := make([]emotionResponse, len(emotions))
	for i, e := range emotions {
		results[i] = toEmotionResponse(e)
	}
	return results
}

// --- ハンドラー ---

// ListEmotions は直近の感情記録一覧を返す。
// GET /api/emotions?days=7
func (h *EmotionHandler) ListEmotions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	days := defaultEmotionDays
	if param := r.URL.Query().Get("days"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 1 {
			writeInvalidRequest(w, "daysは1以上の整数で指定してください。")
			return
		}
		days = parsed
	}

	emotions, err := h.service.ListRecent(r.Context(), userID, days)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmotionResponses(emotions))
}

// CreateEmotion は感情記録を作成する。
// POST /api/emotions
func (h *EmotionHandler) CreateEmotion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req emotionCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.State, req.Intensity, req.Note)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmotionResponse(created))
}

// DeleteEmotion は感情記録を削除する。
// DELETE /api/emotions/:id
func (h *EmotionHandler) DeleteEmotion(w http.ResponseWriter, r *http.Request) {
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
