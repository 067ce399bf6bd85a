// Package oracle は外部生成AIサービスによる文字起こし解析を提供する。
package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// UserContext は解析プロンプトに埋め込むユーザーの現況。
type UserContext struct {
	Habits           []model.HabitSuggestion    `json:"habits"`
	Todos            []model.TodoSuggestion     `json:"todos"`
	Reminders        []model.ReminderSuggestion `json:"reminders"`
	EmotionsLast7Day []model.EmotionSuggestion  `json:"emotionsLast7Days"`
}

// ContextFromModels はドメインモデルからプロンプト用の現況を構築する。
// IDや内部フラグは落とし、解析に必要なフィールドだけを渡す。
func ContextFromModels(habits []*model.Habit, todos []*model.Todo, reminders []*model.Reminder, emotions []*model.EmotionalState) UserContext {
	uc := UserContext{
		Habits:           make([]model.HabitSuggestion, 0, len(habits)),
		Todos:            make([]model.TodoSuggestion, 0, len(todos)),
		Reminders:        make([]model.ReminderSuggestion, 0, len(reminders)),
		EmotionsLast7Day: make([]model.EmotionSuggestion, 0, len(emotions)),
	}

	for _, h := range habits {
		uc.Habits = append(uc.Habits, model.HabitSuggestion{
			Title:        h.Title,
			Description:  h.Description,
			Frequency:    string(h.Frequency),
			ReminderTime: h.ReminderTime,
		})
	}
	for _, t := range todos {
		s := model.TodoSuggestion{Title: t.Title, Priority: t.Priority}
		if t.DueDate != nil {
			s.DueDate = t.DueDate.UTC().Format("2006-01-02")
		}
		uc.Todos = append(uc.Todos, s)
	}
	for _, r := range reminders {
		uc.Reminders = append(uc.Reminders, model.ReminderSuggestion{
			Title:    r.Title,
			RemindAt: r.RemindAt.UTC().Format(time.RFC3339),
		})
	}
	for _, e := range emotions {
		uc.EmotionsLast7Day = append(uc.EmotionsLast7Day, model.EmotionSuggestion{
			State:     e.State,
			Intensity: e.Intensity,
			Note:      e.Note,
		})
	}
	return uc
}

// BuildPrompt は解析プロンプトを組み立てる。
// 同一の入力（現況・文字起こし・時刻・タイムゾーン）に対して常に同一の文字列を返す。
func BuildPrompt(uc UserContext, transcript, timezone string, now time.Time) string {
	if timezone == "" {
		timezone = "UTC"
	}

	nowUTC := now.UTC().Format("2006-01-02T15:04:05.000Z")
	todayUTC := now.UTC().Format("2006-01-02")
	nowLocal := now.Format("2006-01-02T15:04:05")

	habitsJSON := mustJSON(uc.Habits)
	emotionsJSON := mustJSON(uc.EmotionsLast7Day)
	todosJSON := mustJSON(uc.Todos)
	remindersJSON := mustJSON(uc.Reminders)

	escapedTranscript := strings.NewReplacer(`"`, `\"`, "\n", `\n`).Replace(transcript)

	var b strings.Builder
	b.WriteString("You are my intelligent life assistant.\n\n")

	fmt.Fprintf(&b, `# CLOCK & TIMEZONE ANCHORS
- NOW_UTC_ISO: %s
- TODAY_UTC: %s
- TIMEZONE: %s
- NOW_LOCAL(%s): %s

`, nowUTC, todayUTC, timezone, timezone, nowLocal)

	fmt.Fprintf(&b, `# TIME INTERPRETATION & OUTPUT (CRITICAL)
- Interpret natural phrases like "today", "tomorrow", "morning", "afternoon", "evening", and any date-only values **in the user's timezone (%s)**.
- After interpreting the local time, **convert to UTC** and output timestamps in **ISO 8601 with a trailing 'Z'** (e.g., "YYYY-MM-DDTHH:mm:ssZ").
- If only a date is provided for a reminder (e.g., "tomorrow"), assume 09:00 **local time** unless context implies another time; then convert to UTC and output with **Z**.
- All fields named `+"`remindAt`"+` **must** be UTC (Z) timestamps.
- All fields named `+"`dueDate`"+` are **date-only** in "YYYY-MM-DD" and should reflect the **user's local day**.

`, timezone)

	b.WriteString(`# JSON OUTPUT STRICTNESS
- Respond **EXACTLY** as a single JSON object. Start with { and end with }.
- **NO** extra commentary, markdown, or code fences.
- All text must use first-person ("I", "me", "my").
- Empty lists must be [].

# RESPONSE SCHEMA (authoritative):
` + responseSchema + `

# DETAILED RULES
1) Emotional State:
   - Pick from allowed labels.
   - Set intensity 1-10.
   - Write a short first-person note referencing specifics in the transcript and recent emotions.

2) Emergency Suggestion:
   - Include only if there are explicit signals of self-harm/suicidality.
   - Exact value: "I should call a crisis helpline or talk to someone I trust right now. I deserve help, and I don't have to face this alone."

3) Habits:
   - completedHabits: titles that I clearly did today (match exact case from existing habits).
   - newHabits (max 4): realistic, **no duplicates/semantic overlaps** with existing habits; may include optional reminderTime "HH:mm" (local).

4) Todos:
   - completedTodos: titles I clearly completed today (exact match).
   - newTodos (max 4): actionable, **no duplicates/semantic overlaps**; ` + "`priority`" + ` 1-10; optional ` + "`dueDate`" + ` (YYYY-MM-DD, **local** day).

5) Reminders (max 2):
   - Add only if implied/requested.
   - ` + "`remindAt`" + ` must be ISO 8601 **UTC** with Z; interpret the time in the user's timezone, then convert to UTC.

6) Suggestions (max 4):
   - First-person, actionable; include at least 1 that leverages my past habits or emotion trends.

# USER DATA
`)

	fmt.Fprintf(&b, `Habits: %s
EmotionsLast7Days: %s
Todos: %s
Reminders: %s
Transcript: "%s"

# FINAL VALIDATION
Return a **single** valid JSON object only.
`, habitsJSON, emotionsJSON, todosJSON, remindersJSON, escapedTranscript)

	return b.String()
}

// responseSchema は応答スキーマの説明。プロンプトにそのまま埋め込む。
const responseSchema = `{
  "emotionalState": {
    "state": "happy | joyful | excited | relaxed | calm | content | productive | neutral | tired | stressed | anxious | overwhelmed | frustrated | sad | depressed | apathetic | angry",
    "intensity": "number (1-10)",
    "note": "string (short first-person reflection explaining why I feel this way)"
  },
  "newHabits": [
    {
      "title": "string",
      "description": "string (why I want this habit)",
      "frequency": "daily | weekly | monthly",
      "reminderTime": "HH:mm (optional, local time)"
    }
  ],
  "completedHabits": ["string (exact title from Habits data)"],
  "newTodos": [
    {
      "title": "string",
      "dueDate": "YYYY-MM-DD (optional, local day)",
      "priority": "number (1-10)"
    }
  ],
  "completedTodos": ["string (exact title from Todos data)"],
  "newReminders": [
    {
      "title": "string",
      "remindAt": "YYYY-MM-DDTHH:mm:ssZ (UTC)"
    }
  ],
  "emergencySuggestion": "string (only if necessary)",
  "suggestions": ["string (first-person actionable suggestion)"]
}`

// mustJSON はプロンプト埋め込み用のJSONシリアライズ。
// 対象はプレーンな構造体のみでマーシャルは失敗しない。
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("prompt serialization failed: %v", err))
	}
	return string(data)
}
