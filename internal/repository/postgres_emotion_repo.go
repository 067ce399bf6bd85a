package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresEmotionRepo はPostgreSQLを使用した感情記録リポジトリ。
type PostgresEmotionRepo struct {
	db *sql.DB
}

// NewPostgresEmotionRepo はPostgresEmotionRepoを生成する。
func NewPostgresEmotionRepo(db *sql.DB) *PostgresEmotionRepo {
	return &PostgresEmotionRepo{db: db}
}

// FindByID は指定IDの感情記録を取得する。見つからない場合はnilを返す。
func (r *PostgresEmotionRepo) FindByID(ctx context.Context, id string) (*model.EmotionalState, error) {
	state := &model.EmotionalState{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, state, intensity, note, created_at
		 FROM emotional_states WHERE id = $1`,
		id,
	).Scan(&state.ID, &state.UserID, &state.State, &state.Intensity, &state.Note, &state.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("感情記録の取得に失敗しました: %w", err)
	}
	return state, nil
}

// Create は感情記録を作成する。
func (r *PostgresEmotionRepo) Create(ctx context.Context, state *model.EmotionalState) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emotional_states (id, user_id, state, intensity, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		state.ID, state.UserID, state.State, state.Intensity, state.Note, state.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("感情記録の作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの感情記録を物理削除する。
func (r *PostgresEmotionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM emotional_states WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("感情記録の削除に失敗しました: %w", err)
	}
	return nil
}

// ListInRange は記録日時がUTC範囲[start, end]に入る感情記録をcreated_at昇順で返す。
func (r *PostgresEmotionRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.EmotionalState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, state, intensity, note, created_at
		 FROM emotional_states
		 WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		 ORDER BY created_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("感情記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var states []*model.EmotionalState
	for rows.Next() {
		state := &model.EmotionalState{}
		if err := rows.Scan(&state.ID, &state.UserID, &state.State, &state.Intensity, &state.Note, &state.CreatedAt); err != nil {
			return nil, fmt.Errorf("感情記録の読み取りに失敗しました: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("感情記録の走査に失敗しました: %w", err)
	}
	return states, nil
}

// compile-time interface check
var _ EmotionRepository = (*PostgresEmotionRepo)(nil)
