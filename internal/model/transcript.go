package model

import (
	"encoding/json"
	"time"
)

// Transcript はユーザーが吹き込んだ・書き込んだ1日の記録を表す。
// 作成時はResponseとSummaryが空で、オラクル処理の完了時に一度だけ更新される。
// パイプラインがTranscriptを削除することはない。
type Transcript struct {
	ID        string
	UserID    string
	Text      string
	Response  json.RawMessage // オラクルの応答ペイロード。未処理の場合はnil。
	Summary   string
	CreatedAt time.Time
}
