package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/middleware"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/todo"
)

// TodoServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	Create(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error)
	Get(ctx context.Context, userID, todoID string) (*model.Todo, error)
	ListOpen(ctx context.Context, userID string) ([]*model.Todo, error)
	Update(ctx context.Context, userID, todoID string, input todo.UpdateInput) (*model.Todo, error)
	Delete(ctx context.Context, userID, todoID string) error
}

// TodoHandler はタスク管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type todoCreateRequest struct {
	Title string `json:"title"`
	// DueDate はローカル日（YYYY-MM-DD）。省略可。
	DueDate  string `json:"dueDate,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

type todoUpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Priority  *int    `json:"priority,omitempty"`
}

type todoResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    int        `json:"priority"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		CreatedBy:   string(t.CreatedBy),
		CreatedAt:   t.CreatedAt,
	}
}

func toTodoResponses(todos []*model.Todo) []todoResponse {
	results := make([]todoResponse, len(todos))
	for i, t := range todos {
		results[i] = toTodoResponse(t)
	}
	return results
}

// --- ハンドラー ---

// ListTodos は未完了タスクの一覧を返す。
// GET /api/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	todos, err := h.service.ListOpen(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponses(todos))
}

// CreateTodo はタスクを作成する。
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req todoCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeInvalidRequest(w, "タイトルを指定してください。")
		return
	}

	input := todo.CreateInput{
		Title:     req.Title,
		Priority:  req.Priority,
		CreatedBy: model.SourceUser,
	}
	if req.DueDate != "" {
		_, loc := middleware.TimezoneFromContext(r.Context())
		due, err := localday.Midnight(req.DueDate, loc)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(req.DueDate))
			return
		}
		input.DueDate = &due
	}

	created, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTodoResponse(created))
}

// GetTodo はタスクの詳細を返す。
// GET /api/todos/:id
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(found))
}

// UpdateTodo はタスクを部分更新する。completedの切り替えもここで行う。
// PUT /api/todos/:id
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req todoUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := todo.UpdateInput{
		Title:     req.Title,
		Completed: req.Completed,
		Priority:  req.Priority,
	}
	if req.DueDate != nil {
		_, loc := middleware.TimezoneFromContext(r.Context())
		due, err := localday.Midnight(*req.DueDate, loc)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(*req.DueDate))
			return
		}
		input.DueDate = &due
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(updated))
}

// DeleteTodo はタスクを削除する。
// DELETE /api/todos/:id
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
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
