package model

// Analysis はオラクル（外部生成AIサービス）が文字起こしから導出した
// 構造化された更新提案を表す。スキーマ検証済みの状態でのみ生成される。
type Analysis struct {
	EmotionalState      *EmotionSuggestion   `json:"emotionalState,omitempty"`
	NewHabits           []HabitSuggestion    `json:"newHabits"`
	CompletedHabits     []string             `json:"completedHabits"`
	NewTodos            []TodoSuggestion     `json:"newTodos"`
	CompletedTodos      []string             `json:"completedTodos"`
	NewReminders        []ReminderSuggestion `json:"newReminders"`
	EmergencySuggestion string               `json:"emergencySuggestion,omitempty"`
	Suggestions         []string             `json:"suggestions"`
}

// EmotionSuggestion はオラクルが推定した感情状態。
type EmotionSuggestion struct {
	State     string `json:"state"`
	Intensity int    `json:"intensity"`
	Note      string `json:"note"`
}

// HabitSuggestion はオラクルが提案した新しい習慣。
type HabitSuggestion struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminderTime,omitempty"` // "HH:mm"（ローカル時刻）
}

// TodoSuggestion はオラクルが提案した新しいタスク。
type TodoSuggestion struct {
	Title    string `json:"title"`
	DueDate  string `json:"dueDate,omitempty"` // "YYYY-MM-DD"（ローカル日付）
	Priority int    `json:"priority"`
}

// ReminderSuggestion はオラクルが提案した新しいリマインダー。
type ReminderSuggestion struct {
	Title    string `json:"title"`
	RemindAt string `json:"remindAt"` // ISO 8601 UTC（Z付き）
}
