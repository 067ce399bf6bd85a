package todo

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

type mockTodoRepo struct {
	todos map[string]*model.Todo
}

func newMockTodoRepo() *mockTodoRepo {
	return &mockTodoRepo{todos: make(map[string]*model.Todo)}
}

func (m *mockTodoRepo) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	todo, ok := m.todos[id]
	if !ok {
		return nil, nil
	}
	copied := *todo
	return &copied, nil
}

func (m *mockTodoRepo) ListOpenByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	var todos []*model.Todo
	for _, todo := range m.todos {
		if todo.UserID == userID && !todo.Completed {
			copied := *todo
			todos = append(todos, &copied)
		}
	}
	return todos, nil
}

func (m *mockTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	copied := *todo
	m.todos[todo.ID] = &copied
	return nil
}

func (m *mockTodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	if _, ok := m.todos[todo.ID]; !ok {
		return errors.New("todo not found")
	}
	copied := *todo
	m.todos[todo.ID] = &copied
	return nil
}

func (m *mockTodoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.todos[id]; !ok {
		return errors.New("todo not found")
	}
	delete(m.todos, id)
	return nil
}

func (m *mockTodoRepo) ListCompletedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error) {
	return nil, nil
}

func (m *mockTodoRepo) ListCreatedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error) {
	return nil, nil
}

func (m *mockTodoRepo) MarkCompletedByTitles(ctx context.Context, userID string, titles []string, completedAt time.Time) (int64, error) {
	wanted := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		wanted[title] = struct{}{}
	}

	var count int64
	for _, todo := range m.todos {
		if todo.UserID != userID || todo.Completed {
			continue
		}
		if _, ok := wanted[todo.Title]; !ok {
			continue
		}
		todo.Completed = true
		at := completedAt
		todo.CompletedAt = &at
		count++
	}
	return count, nil
}

func (m *mockTodoRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockTodoRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedTodo(repo *mockTodoRepo, id, userID, title string) {
	repo.todos[id] = &model.Todo{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Priority:  model.DefaultTodoPriority,
		CreatedBy: model.SourceUser,
	}
}

// TestCreate_AppliesDefaults は優先度と作成元のデフォルトが適用されることを検証する。
func TestCreate_AppliesDefaults(t *testing.T) {
	repo := newMockTodoRepo()
	service := newTestService(repo)

	todo, err := service.Create(context.Background(), "u1", CreateInput{Title: "買い物"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if todo.Priority != model.DefaultTodoPriority {
		t.Errorf("Priority = %d, want %d", todo.Priority, model.DefaultTodoPriority)
	}
	if todo.CreatedBy != model.SourceUser {
		t.Errorf("CreatedBy = %q, want %q", todo.CreatedBy, model.SourceUser)
	}
	if todo.Completed {
		t.Error("新規タスクが完了状態になっている")
	}
	if _, ok := repo.todos[todo.ID]; !ok {
		t.Error("リポジトリに保存されていない")
	}
}

// TestUpdate_CompletionTogglesCompletedAt は完了で完了日時が設定され、
// 未完了に戻すとクリアされることを検証する。
func TestUpdate_CompletionTogglesCompletedAt(t *testing.T) {
	repo := newMockTodoRepo()
	seedTodo(repo, "t1", "u1", "買い物")
	service := newTestService(repo)
	ctx := context.Background()

	completed := true
	todo, err := service.Update(ctx, "u1", "t1", UpdateInput{Completed: &completed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !todo.Completed || todo.CompletedAt == nil {
		t.Fatalf("完了後 Completed=%v CompletedAt=%v, want true/non-nil", todo.Completed, todo.CompletedAt)
	}

	completed = false
	todo, err = service.Update(ctx, "u1", "t1", UpdateInput{Completed: &completed})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if todo.Completed || todo.CompletedAt != nil {
		t.Errorf("未完了化後 Completed=%v CompletedAt=%v, want false/nil", todo.Completed, todo.CompletedAt)
	}
}

// TestUpdate_NotFound は他ユーザーのタスクが見えないことを検証する。
func TestUpdate_NotFound(t *testing.T) {
	repo := newMockTodoRepo()
	seedTodo(repo, "t1", "u1", "買い物")
	service := newTestService(repo)

	title := "改名"
	_, err := service.Update(context.Background(), "u2", "t1", UpdateInput{Title: &title})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeTodoNotFound {
		t.Errorf("err = %v, want TODO_NOT_FOUND", err)
	}
}

// TestMarkCompletedByTitles_ExactCaseMatch はタイトル照合が大文字小文字を区別し、
// 一致しないタイトルが読み飛ばされることを検証する。
func TestMarkCompletedByTitles_ExactCaseMatch(t *testing.T) {
	repo := newMockTodoRepo()
	seedTodo(repo, "t1", "u1", "Buy milk")
	seedTodo(repo, "t2", "u1", "洗濯")
	service := newTestService(repo)

	completed, err := service.MarkCompletedByTitles(context.Background(), "u1",
		[]string{"buy milk", "洗濯", "存在しないタスク"})
	if err != nil {
		t.Fatalf("MarkCompletedByTitles: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}

	if repo.todos["t1"].Completed {
		t.Error("大文字小文字が異なるタイトルが完了扱いになっている")
	}
	if !repo.todos["t2"].Completed {
		t.Error("完全一致したタイトルが完了になっていない")
	}
}

// TestMarkCompletedByTitles_EmptyTitles は空のタイトル一覧で何も起きないことを検証する。
func TestMarkCompletedByTitles_EmptyTitles(t *testing.T) {
	repo := newMockTodoRepo()
	seedTodo(repo, "t1", "u1", "買い物")
	service := newTestService(repo)

	completed, err := service.MarkCompletedByTitles(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("MarkCompletedByTitles: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if repo.todos["t1"].Completed {
		t.Error("タスクが完了扱いになっている")
	}
}

// TestDelete_RemovesOwnedTodo は所有タスクの削除と他ユーザーからの拒否を検証する。
func TestDelete_RemovesOwnedTodo(t *testing.T) {
	repo := newMockTodoRepo()
	seedTodo(repo, "t1", "u1", "買い物")
	service := newTestService(repo)
	ctx := context.Background()

	if err := service.Delete(ctx, "u2", "t1"); err == nil {
		t.Error("他ユーザーによる削除がエラーにならなかった")
	}

	if err := service.Delete(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.todos["t1"]; ok {
		t.Error("削除後もタスクが残っている")
	}
}
