package model

import "time"

// 感情の強度の有効範囲。
const (
	MinEmotionIntensity = 1
	MaxEmotionIntensity = 10
)

// EmotionalState はある時点のユーザーの感情記録を表す。
// 作成後は削除以外の変更を行わない。
type EmotionalState struct {
	ID        string
	UserID    string
	State     string // emotionLabelsのいずれか
	Intensity int    // 1〜10
	Note      string
	CreatedAt time.Time
}

// emotionLabels は感情状態として許可されるラベルの集合。
var emotionLabels = map[string]struct{}{
	"happy": {}, "joyful": {}, "excited": {}, "relaxed": {}, "calm": {},
	"content": {}, "productive": {}, "neutral": {}, "tired": {},
	"stressed": {}, "anxious": {}, "overwhelmed": {}, "frustrated": {},
	"sad": {}, "depressed": {}, "apathetic": {}, "angry": {},
}

// IsValidEmotionLabel はラベルが許可された感情状態かどうかを判定する。
func IsValidEmotionLabel(state string) bool {
	_, ok := emotionLabels[state]
	return ok
}
