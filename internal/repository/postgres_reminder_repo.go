package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresReminderRepo はPostgreSQLを使用したリマインダーリポジトリ。
type PostgresReminderRepo struct {
	db *sql.DB
}

// NewPostgresReminderRepo はPostgresReminderRepoを生成する。
func NewPostgresReminderRepo(db *sql.DB) *PostgresReminderRepo {
	return &PostgresReminderRepo{db: db}
}

const reminderColumns = `id, user_id, title, remind_at, created_by, created_at`

func scanReminder(scan func(dest ...any) error) (*model.Reminder, error) {
	reminder := &model.Reminder{}
	err := scan(
		&reminder.ID, &reminder.UserID, &reminder.Title,
		&reminder.RemindAt, &reminder.CreatedBy, &reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

func (r *PostgresReminderRepo) queryReminders(ctx context.Context, query string, args ...any) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*model.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// FindByID は指定IDのリマインダーを取得する。見つからない場合はnilを返す。
func (r *PostgresReminderRepo) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1`,
		id,
	)
	reminder, err := scanReminder(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("リマインダーの取得に失敗しました: %w", err)
	}
	return reminder, nil
}

// ListByUserID はユーザーのリマインダー一覧をremind_at昇順で返す。
func (r *PostgresReminderRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Reminder, error) {
	reminders, err := r.queryReminders(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE user_id = $1
		 ORDER BY remind_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("リマインダー一覧の取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// ListUpcoming はremind_atがnow以降のリマインダーをremind_at昇順で返す。
func (r *PostgresReminderRepo) ListUpcoming(ctx context.Context, userID string, now time.Time) ([]*model.Reminder, error) {
	reminders, err := r.queryReminders(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE user_id = $1 AND remind_at >= $2
		 ORDER BY remind_at ASC`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("今後のリマインダーの取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// Create はリマインダーを作成する。
func (r *PostgresReminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, title, remind_at, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reminder.ID, reminder.UserID, reminder.Title,
		reminder.RemindAt, reminder.CreatedBy, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("リマインダーの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はリマインダーを更新する。
func (r *PostgresReminderRepo) Update(ctx context.Context, reminder *model.Reminder) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET title = $2, remind_at = $3 WHERE id = $1`,
		reminder.ID, reminder.Title, reminder.RemindAt,
	)
	if err != nil {
		return fmt.Errorf("リマインダーの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのリマインダーを物理削除する。
func (r *PostgresReminderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("リマインダーの削除に失敗しました: %w", err)
	}
	return nil
}

// ListInRange は通知時刻がUTC範囲[start, end]に入るリマインダーを返す。
func (r *PostgresReminderRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Reminder, error) {
	reminders, err := r.queryReminders(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE user_id = $1 AND remind_at BETWEEN $2 AND $3
		 ORDER BY remind_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("範囲内リマインダーの取得に失敗しました: %w", err)
	}
	return reminders, nil
}

// compile-time interface check
var _ ReminderRepository = (*PostgresReminderRepo)(nil)
