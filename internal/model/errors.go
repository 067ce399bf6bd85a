package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, daily, oracle, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeHabitNotFound       = "HABIT_NOT_FOUND"
	ErrCodeTodoNotFound        = "TODO_NOT_FOUND"
	ErrCodeReminderNotFound    = "REMINDER_NOT_FOUND"
	ErrCodeEmotionNotFound     = "EMOTION_NOT_FOUND"
	ErrCodeTranscriptNotFound  = "TRANSCRIPT_NOT_FOUND"
	ErrCodeSuggestionsNotFound = "SUGGESTIONS_NOT_FOUND"
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodeInvalidRange        = "INVALID_RANGE"
	ErrCodeInvalidFrequency    = "INVALID_FREQUENCY"
	ErrCodeInvalidEmotion      = "INVALID_EMOTION"
	ErrCodeInvalidTimezone     = "INVALID_TIMEZONE"
	ErrCodeLockConflict        = "LOCK_CONFLICT"
	ErrCodeOracleUnavailable   = "ORACLE_UNAVAILABLE"
	ErrCodeEmptyTitles         = "EMPTY_TITLES"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewHabitNotFoundError は習慣未検出エラーを生成する。
func NewHabitNotFoundError(habitID string) *APIError {
	return &APIError{
		Code:     ErrCodeHabitNotFound,
		Message:  fmt.Sprintf("指定された習慣が見つかりません: %s", habitID),
		Category: "daily",
		Action:   "習慣IDを確認してください。",
	}
}

// NewTodoNotFoundError はタスク未検出エラーを生成する。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", todoID),
		Category: "daily",
		Action:   "タスクIDを確認してください。",
	}
}

// NewReminderNotFoundError はリマインダー未検出エラーを生成する。
func NewReminderNotFoundError(reminderID string) *APIError {
	return &APIError{
		Code:     ErrCodeReminderNotFound,
		Message:  fmt.Sprintf("指定されたリマインダーが見つかりません: %s", reminderID),
		Category: "daily",
		Action:   "リマインダーIDを確認してください。",
	}
}

// NewEmotionNotFoundError は感情記録未検出エラーを生成する。
func NewEmotionNotFoundError(emotionID string) *APIError {
	return &APIError{
		Code:     ErrCodeEmotionNotFound,
		Message:  fmt.Sprintf("指定された感情記録が見つかりません: %s", emotionID),
		Category: "daily",
		Action:   "感情記録IDを確認してください。",
	}
}

// NewTranscriptNotFoundError は文字起こし未検出エラーを生成する。
func NewTranscriptNotFoundError(transcriptID string) *APIError {
	return &APIError{
		Code:     ErrCodeTranscriptNotFound,
		Message:  fmt.Sprintf("指定された文字起こしが見つかりません: %s", transcriptID),
		Category: "daily",
		Action:   "文字起こしIDを確認してください。",
	}
}

// NewSuggestionsNotFoundError は承認待ち提案が存在しない場合のエラーを生成する。
func NewSuggestionsNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeSuggestionsNotFound,
		Message:  "承認待ちの提案はありません。",
		Category: "daily",
		Action:   "新しい文字起こしを送信すると提案が生成されます。",
	}
}

// NewInvalidDateError は無効な日付エラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", date),
		Category: "validation",
		Action:   "日付はYYYY-MM-DD形式で指定してください。",
	}
}

// NewInvalidRangeError は無効な日付範囲エラーを生成する。
func NewInvalidRangeError(start, end string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRange,
		Message:  fmt.Sprintf("無効な日付範囲です: %s〜%s", start, end),
		Category: "validation",
		Action:   "開始日が終了日以前になるようYYYY-MM-DD形式で指定してください。",
	}
}

// NewInvalidFrequencyError は無効な頻度エラーを生成する。
func NewInvalidFrequencyError(frequency string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFrequency,
		Message:  fmt.Sprintf("無効な頻度です: %s", frequency),
		Category: "validation",
		Action:   "頻度には daily、weekly、monthly のいずれかを指定してください。",
	}
}

// NewInvalidEmotionError は無効な感情ラベルエラーを生成する。
func NewInvalidEmotionError(state string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmotion,
		Message:  fmt.Sprintf("無効な感情ラベルです: %s", state),
		Category: "validation",
		Action:   "定義済みの感情ラベルを指定してください。",
	}
}

// NewInvalidTimezoneError は無効なタイムゾーン識別子エラーを生成する。
// プロフィールへの保存時のみ使用する。リクエストヘッダーの解決はUTCフォールバックで処理する。
func NewInvalidTimezoneError(timezone string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTimezone,
		Message:  fmt.Sprintf("無効なタイムゾーンです: %s", timezone),
		Category: "validation",
		Action:   "IANAタイムゾーン識別子（例: Asia/Tokyo）を指定してください。",
	}
}

// NewLockConflictError は同一ユーザーの処理が進行中の場合のエラーを生成する。
func NewLockConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeLockConflict,
		Message:  "文字起こしの処理が既に進行中です。",
		Category: "system",
		Action:   "処理が完了するまで待ってから再度お試しください。",
	}
}

// NewOracleUnavailableError は解析サービスが利用できない場合のエラーを生成する。
// 文字起こし自体は保存済みであることを伝える。
func NewOracleUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeOracleUnavailable,
		Message:  "文字起こしは保存されましたが、解析サービスからの応答を取得できませんでした。",
		Category: "oracle",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewEmptyTitlesError はタイトルリストが空の場合のエラーを生成する。
func NewEmptyTitlesError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyTitles,
		Message:  "タイトルが1件も指定されていません。",
		Category: "validation",
		Action:   "完了対象のタイトルを1件以上指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
