package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

const todoColumns = `id, user_id, title, completed, completed_at, due_date, priority, created_by, created_at`

func scanTodo(scan func(dest ...any) error) (*model.Todo, error) {
	todo := &model.Todo{}
	var completedAt, dueDate sql.NullTime

	err := scan(
		&todo.ID, &todo.UserID, &todo.Title, &todo.Completed,
		&completedAt, &dueDate, &todo.Priority, &todo.CreatedBy, &todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		todo.CompletedAt = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		todo.DueDate = &t
	}
	return todo, nil
}

func (r *PostgresTodoRepo) queryTodos(ctx context.Context, query string, args ...any) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*model.Todo
	for rows.Next() {
		todo, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`,
		id,
	)
	todo, err := scanTodo(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	return todo, nil
}

// ListOpenByUserID はユーザーの未完了タスク一覧をcreated_at昇順で返す。
func (r *PostgresTodoRepo) ListOpenByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := r.queryTodos(ctx,
		`SELECT `+todoColumns+`
		 FROM todos
		 WHERE user_id = $1 AND completed = FALSE
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("未完了タスクの取得に失敗しました: %w", err)
	}
	return todos, nil
}

// Create はタスクを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, title, completed, completed_at, due_date, priority, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		todo.ID, todo.UserID, todo.Title, todo.Completed,
		nullTime(todo.CompletedAt), nullTime(todo.DueDate),
		todo.Priority, todo.CreatedBy, todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はタスクの編集可能フィールドと完了状態を更新する。
func (r *PostgresTodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE todos SET
		    title = $2, completed = $3, completed_at = $4, due_date = $5, priority = $6
		 WHERE id = $1`,
		todo.ID, todo.Title, todo.Completed,
		nullTime(todo.CompletedAt), nullTime(todo.DueDate), todo.Priority,
	)
	if err != nil {
		return fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのタスクを物理削除する。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	return nil
}

// ListCompletedInRange は完了日時がUTC範囲[start, end]に入るタスクを返す。
func (r *PostgresTodoRepo) ListCompletedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error) {
	todos, err := r.queryTodos(ctx,
		`SELECT `+todoColumns+`
		 FROM todos
		 WHERE user_id = $1 AND completed = TRUE
		   AND completed_at BETWEEN $2 AND $3
		 ORDER BY completed_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("完了タスクの取得に失敗しました: %w", err)
	}
	return todos, nil
}

// ListCreatedInRange は作成日時がUTC範囲[start, end]に入るタスクを返す。
func (r *PostgresTodoRepo) ListCreatedInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Todo, error) {
	todos, err := r.queryTodos(ctx,
		`SELECT `+todoColumns+`
		 FROM todos
		 WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		 ORDER BY created_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("作成タスクの取得に失敗しました: %w", err)
	}
	return todos, nil
}

// MarkCompletedByTitles は未完了タスクのうちタイトルが完全一致（大文字小文字を区別）
// するものを完了にし、完了日時を設定する。更新件数を返す。
func (r *PostgresTodoRepo) MarkCompletedByTitles(ctx context.Context, userID string, titles []string, completedAt time.Time) (int64, error) {
	if len(titles) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET completed = TRUE, completed_at = $3
		 WHERE user_id = $1 AND completed = FALSE AND title = ANY($2)`,
		userID, pq.Array(titles), completedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("タイトルによるタスク完了に失敗しました: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("タスク完了件数の確認に失敗しました: %w", err)
	}
	return updated, nil
}

// DeleteOlderThan は作成日時がcutoffより古いタスクを削除し、削除件数を返す。
func (r *PostgresTodoRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("期限切れタスクの削除に失敗しました: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の確認に失敗しました: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
