package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// PostgresTranscriptRepo はPostgreSQLを使用した文字起こしリポジトリ。
type PostgresTranscriptRepo struct {
	db *sql.DB
}

// NewPostgresTranscriptRepo はPostgresTranscriptRepoを生成する。
func NewPostgresTranscriptRepo(db *sql.DB) *PostgresTranscriptRepo {
	return &PostgresTranscriptRepo{db: db}
}

func scanTranscript(scan func(dest ...any) error) (*model.Transcript, error) {
	transcript := &model.Transcript{}
	var response []byte
	var summary sql.NullString

	err := scan(
		&transcript.ID, &transcript.UserID, &transcript.Text,
		&response, &summary, &transcript.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	transcript.Response = response
	if summary.Valid {
		transcript.Summary = summary.String
	}
	return transcript, nil
}

// FindByID は指定IDの文字起こしを取得する。見つからない場合はnilを返す。
func (r *PostgresTranscriptRepo) FindByID(ctx context.Context, id string) (*model.Transcript, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, response, summary, created_at
		 FROM transcripts WHERE id = $1`,
		id,
	)
	transcript, err := scanTranscript(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("文字起こしの取得に失敗しました: %w", err)
	}
	return transcript, nil
}

// Create は生の文字起こしテキストを保存する。解析前に必ず呼ぶこと。
func (r *PostgresTranscriptRepo) Create(ctx context.Context, transcript *model.Transcript) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, user_id, text, summary, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		transcript.ID, transcript.UserID, transcript.Text,
		transcript.Summary, transcript.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("文字起こしの保存に失敗しました: %w", err)
	}
	return nil
}

// UpdateResult は解析結果（構造化応答と要約）を記録する。
// 処理完了時に一度だけ呼ばれる。
func (r *PostgresTranscriptRepo) UpdateResult(ctx context.Context, id string, response []byte, summary string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transcripts SET response = $2, summary = $3 WHERE id = $1`,
		id, response, summary,
	)
	if err != nil {
		return fmt.Errorf("解析結果の記録に失敗しました: %w", err)
	}
	return nil
}

// ListInRange は作成日時がUTC範囲[start, end]に入る文字起こしをcreated_at昇順で返す。
func (r *PostgresTranscriptRepo) ListInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Transcript, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, text, response, summary, created_at
		 FROM transcripts
		 WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		 ORDER BY created_at ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("文字起こし一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var transcripts []*model.Transcript
	for rows.Next() {
		transcript, err := scanTranscript(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("文字起こしの読み取りに失敗しました: %w", err)
		}
		transcripts = append(transcripts, transcript)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("文字起こし一覧の走査に失敗しました: %w", err)
	}
	return transcripts, nil
}

// ListByUserID はユーザーの文字起こし一覧をcreated_at降順で返す。
func (r *PostgresTranscriptRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Transcript, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, text, response, summary, created_at
		 FROM transcripts
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("文字起こし一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var transcripts []*model.Transcript
	for rows.Next() {
		transcript, err := scanTranscript(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("文字起こしの読み取りに失敗しました: %w", err)
		}
		transcripts = append(transcripts, transcript)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("文字起こし一覧の走査に失敗しました: %w", err)
	}
	return transcripts, nil
}

// Delete は指定IDの文字起こしを物理削除する。
func (r *PostgresTranscriptRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("文字起こしの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TranscriptRepository = (*PostgresTranscriptRepo)(nil)
