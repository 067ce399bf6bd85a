package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/daybook/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// StatusForAPIError はエラーコードに対応するHTTPステータスコードを返す。
func StatusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeHabitNotFound,
		model.ErrCodeTodoNotFound,
		model.ErrCodeReminderNotFound,
		model.ErrCodeEmotionNotFound,
		model.ErrCodeTranscriptNotFound,
		model.ErrCodeSuggestionsNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidDate,
		model.ErrCodeInvalidRange,
		model.ErrCodeInvalidFrequency,
		model.ErrCodeInvalidEmotion,
		model.ErrCodeInvalidTimezone,
		model.ErrCodeEmptyTitles:
		return http.StatusBadRequest
	case model.ErrCodeLockConflict:
		return http.StatusTooManyRequests
	case model.ErrCodeOracleUnavailable:
		return http.StatusBadGateway
	case model.ErrCodeUserNotFound:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError はエラーコードからステータスを決定してレスポンスを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusForAPIError(apiErr), apiErr)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
