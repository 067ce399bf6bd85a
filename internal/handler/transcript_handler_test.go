package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// --- モック定義 ---

type mockTranscriptService struct {
	createFn  func(ctx context.Context, userID, text string) (*model.Transcript, error)
	getFn     func(ctx context.Context, userID, transcriptID string) (*model.Transcript, error)
	listFn    func(ctx context.Context, userID string) ([]*model.Transcript, error)
	deleteFn  func(ctx context.Context, userID, transcriptID string) error
	processFn func(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error)
}

func (m *mockTranscriptService) Create(ctx context.Context, userID, text string) (*model.Transcript, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, text)
	}
	return nil, nil
}

func (m *mockTranscriptService) Get(ctx context.Context, userID, transcriptID string) (*model.Transcript, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, transcriptID)
	}
	return nil, nil
}

func (m *mockTranscriptService) List(ctx context.Context, userID string) ([]*model.Transcript, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTranscriptService) Delete(ctx context.Context, userID, transcriptID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, transcriptID)
	}
	return nil
}

func (m *mockTranscriptService) Process(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error) {
	if m.processFn != nil {
		return m.processFn(ctx, transcript, timezone, loc)
	}
	return &model.Analysis{}, nil
}

var _ TranscriptServiceInterface = (*mockTranscriptService)(nil)

// --- テスト ---

func TestTranscriptHandler_Create_ProcessesWithRequestTimezone(t *testing.T) {
	var gotTimezone string
	svc := &mockTranscriptService{
		createFn: func(ctx context.Context, userID, text string) (*model.Transcript, error) {
			return &model.Transcript{ID: "tr-1", UserID: userID, Text: text, CreatedAt: time.Now()}, nil
		},
		processFn: func(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error) {
			gotTimezone = timezone
			return &model.Analysis{
				Suggestions: []string{"今日もお疲れさまでした。"},
			}, nil
		},
	}
	h := NewTranscriptHandler(svc)

	body := []byte(`{"text":"今日はランニングをして、牛乳を買った"}`)
	req := authedRequest(t, http.MethodPost, "/api/transcripts", "user-1", "Asia/Tokyo", body)
	w := httptest.NewRecorder()

	h.CreateTranscript(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotTimezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q, want %q", gotTimezone, "Asia/Tokyo")
	}

	var resp transcriptProcessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Transcript.ID != "tr-1" {
		t.Errorf("transcript id = %q, want tr-1", resp.Transcript.ID)
	}
	if resp.Analysis == nil || len(resp.Analysis.Suggestions) != 1 {
		t.Errorf("expected analysis with one suggestion, got %+v", resp.Analysis)
	}
}

func TestTranscriptHandler_Create_EmptyText(t *testing.T) {
	h := NewTranscriptHandler(&mockTranscriptService{})

	req := authedRequest(t, http.MethodPost, "/api/transcripts", "user-1", "", []byte(`{"text":""}`))
	w := httptest.NewRecorder()

	h.CreateTranscript(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTranscriptHandler_Create_OracleUnavailable_Returns502(t *testing.T) {
	svc := &mockTranscriptService{
		createFn: func(ctx context.Context, userID, text string) (*model.Transcript, error) {
			return &model.Transcript{ID: "tr-1", UserID: userID, Text: text}, nil
		},
		processFn: func(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error) {
			return nil, model.NewOracleUnavailableError()
		},
	}
	h := NewTranscriptHandler(svc)

	req := authedRequest(t, http.MethodPost, "/api/transcripts", "user-1", "", []byte(`{"text":"今日の記録"}`))
	w := httptest.NewRecorder()

	h.CreateTranscript(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != model.ErrCodeOracleUnavailable {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeOracleUnavailable)
	}
}

func TestTranscriptHandler_Get_ReturnsTranscript(t *testing.T) {
	svc := &mockTranscriptService{
		getFn: func(ctx context.Context, userID, transcriptID string) (*model.Transcript, error) {
			return &model.Transcript{
				ID:       transcriptID,
				UserID:   userID,
				Text:     "今日の記録",
				Response: json.RawMessage(`{"suggestions":[]}`),
				Summary:  "要約",
			}, nil
		},
	}
	h := NewTranscriptHandler(svc)

	req := authedRequest(t, http.MethodGet, "/api/transcripts/tr-1", "user-1", "", nil)
	req = withURLParam(req, "id", "tr-1")
	w := httptest.NewRecorder()

	h.GetTranscript(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp transcriptResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Summary != "要約" {
		t.Errorf("summary = %q, want %q", resp.Summary, "要約")
	}
}

func TestTranscriptHandler_List_ReturnsTranscripts(t *testing.T) {
	svc := &mockTranscriptService{
		listFn: func(ctx context.Context, userID string) ([]*model.Transcript, error) {
			return []*model.Transcript{
				{ID: "tr-2", UserID: userID, Text: "昨日の記録"},
				{ID: "tr-1", UserID: userID, Text: "一昨日の記録"},
			}, nil
		},
	}
	h := NewTranscriptHandler(svc)

	req := authedRequest(t, http.MethodGet, "/api/transcripts", "user-1", "", nil)
	w := httptest.NewRecorder()

	h.ListTranscripts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []transcriptResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
	if resp[0].ID != "tr-2" {
		t.Errorf("first id = %q, want tr-2", resp[0].ID)
	}
}

func TestTranscriptHandler_Delete_Returns204(t *testing.T) {
	var gotID string
	svc := &mockTranscriptService{
		deleteFn: func(ctx context.Context, userID, transcriptID string) error {
			gotID = transcriptID
			return nil
		},
	}
	h := NewTranscriptHandler(svc)

	req := authedRequest(t, http.MethodDelete, "/api/transcripts/tr-1", "user-1", "", nil)
	req = withURLParam(req, "id", "tr-1")
	w := httptest.NewRecorder()

	h.DeleteTranscript(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if gotID != "tr-1" {
		t.Errorf("transcript id = %q, want tr-1", gotID)
	}
}
