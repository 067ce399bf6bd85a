package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/daybook/internal/daily"
	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
)

// DailyServiceInterface は日次ビューハンドラーが必要とするサービスインターフェース。
type DailyServiceInterface interface {
	Range(ctx context.Context, userID, startDay, endDay string, loc *time.Location) ([]*daily.DayView, error)
	Day(ctx context.Context, userID, day string, loc *time.Location) (*daily.TodayView, error)
}

// DailyHandler は日次ビューのHTTPハンドラー。
type DailyHandler struct {
	service DailyServiceInterface
}

// NewDailyHandler はDailyHandlerを生成する。
func NewDailyHandler(service DailyServiceInterface) *DailyHandler {
	return &DailyHandler{service: service}
}

// --- レスポンス型 ---

type habitCompletionResponse struct {
	HabitID     string    `json:"habitId"`
	CompletedAt time.Time `json:"completedAt"`
}

func toHabitCompletionResponses(completions []*model.HabitCompletion) []habitCompletionResponse {
	results := make([]habitCompletionResponse, len(completions))
	for i, c := range completions {
		results[i] = habitCompletionResponse{
			HabitID:     c.HabitID,
			CompletedAt: c.CompletedAt,
		}
	}
	return results
}

type dayViewResponse struct {
	Day             string                    `json:"day"`
	HabitsCompleted []habitCompletionResponse `json:"habitsCompleted"`
	TodosCompleted  []todoResponse            `json:"todosCompleted"`
	TodosCreated    []todoResponse            `json:"todosCreated"`
	Reminders       []reminderResponse        `json:"reminders"`
	EmotionalStates []emotionResponse         `json:"emotionalStates"`
	Transcripts     []transcriptResponse      `json:"transcripts"`
}

type todayViewResponse struct {
	dayViewResponse
	ActiveHabits []habitResponse `json:"activeHabits"`
	OpenTodos    []todoResponse  `json:"openTodos"`
}

func toDayViewResponse(view *daily.DayView) dayViewResponse {
	return dayViewResponse{
		Day:             view.Day,
		HabitsCompleted: toHabitCompletionResponses(view.HabitsCompleted),
		TodosCompleted:  toTodoResponses(view.TodosCompleted),
		TodosCreated:    toTodoResponses(view.TodosCreated),
		Reminders:       toReminderResponses(view.Reminders),
		EmotionalStates: toEmotionResponses(view.EmotionalStates),
		Transcripts:     toTranscriptResponses(view.Transcripts),
	}
}

func toDayViewResponses(views []*daily.DayView) []dayViewResponse {
	results := make([]dayViewResponse, len(views))
	for i, view := range views {
		results[i] = toDayViewResponse(view)
	}
	return results
}

// --- ハンドラー ---

// GetRange は指定したローカル日範囲の日次ビューを昇順で返す。
// GET /api/daily?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *DailyHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if _, err := localday.ParseDay(start); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(start))
		return
	}
	if _, err := localday.ParseDay(end); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(end))
		return
	}

	_, loc := middleware.TimezoneFromContext(r.Context())
	views, err := h.service.Range(r.Context(), userID, start, end, loc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayViewResponses(views))
}

// GetToday は今日（または指定日）のビューに有効な習慣・未完了タスクを加えて返す。
// GET /api/daily/today?date=YYYY-MM-DD
func (h *DailyHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	_, loc := middleware.TimezoneFromContext(r.Context())
	day := r.URL.Query().Get("date")
	if day == "" {
		day = localday.Today(time.Now(), loc)
	} else if _, err := localday.ParseDay(day); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(day))
		return
	}

	view, err := h.service.Day(r.Context(), userID, day, loc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todayViewResponse{
		dayViewResponse: toDayViewResponse(&view.DayView),
		ActiveHabits:    toHabitResponses(view.ActiveHabits),
		OpenTodos:       toTodoResponses(view.OpenTodos),
	})
}
