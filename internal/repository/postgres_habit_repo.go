package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresHabitRepo はPostgreSQLを使用した習慣リポジトリ。
type PostgresHabitRepo struct {
	db *sql.DB
}

// NewPostgresHabitRepo はPostgresHabitRepoを生成する。
func NewPostgresHabitRepo(db *sql.DB) *PostgresHabitRepo {
	return &PostgresHabitRepo{db: db}
}

const habitColumns = `id, user_id, title, description, frequency, reminder_time,
       streak_current, streak_longest, last_completed_date,
       is_deleted, is_accepted, created_by, created_at, updated_at`

func scanHabit(scan func(dest ...any) error) (*model.Habit, error) {
	habit := &model.Habit{}
	var lastCompleted sql.NullTime

	err := scan(
		&habit.ID, &habit.UserID, &habit.Title, &habit.Description,
		&habit.Frequency, &habit.ReminderTime,
		&habit.Streak.Current, &habit.Streak.Longest, &lastCompleted,
		&habit.IsDeleted, &habit.IsAccepted, &habit.CreatedBy,
		&habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastCompleted.Valid {
		t := lastCompleted.Time
		habit.Streak.LastCompletedDate = &t
	}
	return habit, nil
}

// FindByID は指定IDの習慣を取得する。見つからない場合はnilを返す。
// 論理削除済みの習慣も返す。呼び出し側でIsDeletedを確認すること。
func (r *PostgresHabitRepo) FindByID(ctx context.Context, id string) (*model.Habit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = $1`,
		id,
	)
	habit, err := scanHabit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("習慣の取得に失敗しました: %w", err)
	}
	return habit, nil
}

// ListActiveByUserID はユーザーの有効な習慣一覧をcreated_at昇順で返す。
func (r *PostgresHabitRepo) ListActiveByUserID(ctx context.Context, userID string) ([]*model.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+habitColumns+`
		 FROM habits
		 WHERE user_id = $1 AND is_deleted = FALSE
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("習慣一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var habits []*model.Habit
	for rows.Next() {
		habit, err := scanHabit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("習慣の読み取りに失敗しました: %w", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("習慣一覧の走査に失敗しました: %w", err)
	}
	return habits, nil
}

// FindActiveByTitle はユーザーの有効な習慣をタイトル完全一致で検索する。
// 大文字小文字を区別する。見つからない場合はnilを返す。
func (r *PostgresHabitRepo) FindActiveByTitle(ctx context.Context, userID, title string) (*model.Habit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+`
		 FROM habits
		 WHERE user_id = $1 AND title = $2 AND is_deleted = FALSE
		 ORDER BY created_at ASC
		 LIMIT 1`,
		userID, title,
	)
	habit, err := scanHabit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タイトルによる習慣の検索に失敗しました: %w", err)
	}
	return habit, nil
}

// Create は習慣を作成する。
func (r *PostgresHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, title, description, frequency, reminder_time,
		                     streak_current, streak_longest, last_completed_date,
		                     is_deleted, is_accepted, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		habit.ID, habit.UserID, habit.Title, habit.Description,
		habit.Frequency, habit.ReminderTime,
		habit.Streak.Current, habit.Streak.Longest, nullTime(habit.Streak.LastCompletedDate),
		habit.IsDeleted, habit.IsAccepted, habit.CreatedBy,
		habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("習慣の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は習慣の編集可能フィールドとストリークを更新する。
func (r *PostgresHabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE habits SET
		    title = $2, description = $3, frequency = $4, reminder_time = $5,
		    streak_current = $6, streak_longest = $7, last_completed_date = $8,
		    is_accepted = $9, updated_at = now()
		 WHERE id = $1`,
		habit.ID, habit.Title, habit.Description, habit.Frequency, habit.ReminderTime,
		habit.Streak.Current, habit.Streak.Longest, nullTime(habit.Streak.LastCompletedDate),
		habit.IsAccepted,
	)
	if err != nil {
		return fmt.Errorf("習慣の更新に失敗しました: %w", err)
	}
	return nil
}

// SoftDelete は習慣を論理削除する。達成履歴は保持される。
func (r *PostgresHabitRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE habits SET is_deleted = TRUE, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("習慣の削除に失敗しました: %w", err)
	}
	return nil
}

// AddCompletion は達成記録を冪等に追加する。
// 同一の(habit_id, completed_at)が既に存在する場合は何もせずfalseを返す。
func (r *PostgresHabitRepo) AddCompletion(ctx context.Context, completion *model.HabitCompletion) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO habit_completions (habit_id, user_id, completed_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (habit_id, completed_at) DO NOTHING`,
		completion.HabitID, completion.UserID, completion.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("達成記録の追加に失敗しました: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("達成記録の追加結果の確認に失敗しました: %w", err)
	}
	return inserted > 0, nil
}

// ListCompletionsInRange はユーザーの達成記録をUTC範囲[start, end]で取得する。
func (r *PostgresHabitRepo) ListCompletionsInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.HabitCompletion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT habit_id, user_id, completed_at
		 FROM habit_completions
		 WHERE user_id = $1 AND completed_at BETWEEN $2 AND $3
		 ORDER BY completed_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("達成記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var completions []*model.HabitCompletion
	for rows.Next() {
		c := &model.HabitCompletion{}
		if err := rows.Scan(&c.HabitID, &c.UserID, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("達成記録の読み取りに失敗しました: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("達成記録の走査に失敗しました: %w", err)
	}
	return completions, nil
}

// nullTime は*time.Timeをsql.NullTimeに変換する。
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ HabitRepository = (*PostgresHabitRepo)(nil)
