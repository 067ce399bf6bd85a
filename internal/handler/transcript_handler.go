package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
)

// TranscriptServiceInterface は記録ハンドラーが必要とするサービスインターフェース。
type TranscriptServiceInterface interface {
	Create(ctx context.Context, userID, text string) (*model.Transcript, error)
	Get(ctx context.Context, userID, transcriptID string) (*model.Transcript, error)
	List(ctx context.Context, userID string) ([]*model.Transcript, error)
	Delete(ctx context.Context, userID, transcriptID string) error
	Process(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error)
}

// TranscriptHandler は記録の受付・解析のHTTPハンドラー。
type TranscriptHandler struct {
	service TranscriptServiceInterface
}

// NewTranscriptHandler はTranscriptHandlerを生成する。
func NewTranscriptHandler(service TranscriptServiceInterface) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type transcriptCreateRequest struct {
	Text string `json:"text"`
}

type transcriptResponse struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Response  json.RawMessage `json:"response,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type transcriptProcessResponse struct {
	Transcript transcriptResponse `json:"transcript"`
	Analysis   *model.Analysis    `json:"analysis"`
}

func toTranscriptResponse(t *model.Transcript) transcriptResponse {
	return transcriptResponse{
		ID:        t.ID,
		Text:      t.Text,
		Response:  t.Response,
		Summary:   t.Summary,
		CreatedAt: t.CreatedAt,
	}
}

func toTranscriptResponses(transcripts []*model.Transcript) []transcriptResponse {
	results := make([]transcriptResponse, len(transcripts))
	for i, t := range transcripts {
		results[i] = toTranscriptResponse(t)
	}
	return results
}

// --- ハンドラー ---

// CreateTranscript は記録を受け付け、オラクル解析パイプラインを実行する。
// 記録の保存は解析の成否に関わらず維持される。
// POST /api/transcripts
func (h *TranscriptHandler) CreateTranscript(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req transcriptCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeInvalidRequest(w, "記録の本文を指定してください。")
		return
	}

	transcript, err := h.service.Create(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	timezone, loc := middleware.TimezoneFromContext(r.Context())
	analysis, err := h.service.Process(r.Context(), transcript, timezone, loc)
	if err != nil {
		// 生の記録はすでに保存済み。オラクル障害はそのまま伝える。
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transcriptProcessResponse{
		Transcript: toTranscriptResponse(transcript),
		Analysis:   analysis,
	})
}

// ListTranscripts は記録の一覧を新しい順で返す。
// GET /api/transcripts
func (h *TranscriptHandler) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	transcripts, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTranscriptResponses(transcripts))
}

// GetTranscript は記録の詳細を返す。
// GET /api/transcripts/:id
func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTranscriptResponse(found))
}

// DeleteTranscript は記録を削除する。
// DELETE /api/transcripts/:id
func (h *TranscriptHandler) DeleteTranscript(w http.ResponseWriter, r *http.Request) {
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
