package daily

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/repository"
)

// DayView は1ローカル日分のアクティビティを集約したビュー。
// 各カテゴリはデータがない場合でも空スライスになる（nilにはならない）。
type DayView struct {
	Day             string                   `json:"day"`
	HabitsCompleted []*model.HabitCompletion `json:"habitsCompleted"`
	TodosCompleted  []*model.Todo            `json:"todosCompleted"`
	TodosCreated    []*model.Todo            `json:"todosCreated"`
	Reminders       []*model.Reminder        `json:"reminders"`
	EmotionalStates []*model.EmotionalState  `json:"emotionalStates"`
	Transcripts     []*model.Transcript      `json:"transcripts"`
}

// TodayView は単一日のビューに現在の習慣・未完了タスクを加えたもの。
type TodayView struct {
	DayView
	ActiveHabits []*model.Habit `json:"activeHabits"`
	OpenTodos    []*model.Todo  `json:"openTodos"`
}

// Service は日単位ビューの組み立てを行うサービス層。
// 各リポジトリからUTC範囲で取得した行をローカル日キーで再投影し、
// 日ごとの互いに素な和としてマージする。
type Service struct {
	habitRepo      repository.HabitRepository
	todoRepo       repository.TodoRepository
	reminderRepo   repository.ReminderRepository
	emotionRepo    repository.EmotionRepository
	transcriptRepo repository.TranscriptRepository
	logger         *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	habitRepo repository.HabitRepository,
	todoRepo repository.TodoRepository,
	reminderRepo repository.ReminderRepository,
	emotionRepo repository.EmotionRepository,
	transcriptRepo repository.TranscriptRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		habitRepo:      habitRepo,
		todoRepo:       todoRepo,
		reminderRepo:   reminderRepo,
		emotionRepo:    emotionRepo,
		transcriptRepo: transcriptRepo,
		logger:         logger,
	}
}

// rangeData はUTC範囲で取得した全カテゴリの生データ。
type rangeData struct {
	completions    []*model.HabitCompletion
	todosCompleted []*model.Todo
	todosCreated   []*model.Todo
	reminders      []*model.Reminder
	emotions       []*model.EmotionalState
	transcripts    []*model.Transcript
}

// fetchRange は全カテゴリを並行に取得する。
func (s *Service) fetchRange(ctx context.Context, userID string, start, end time.Time) (*rangeData, error) {
	data := &rangeData{}
	errs := make([]error, 6)

	var wg sync.WaitGroup
	run := func(i int, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch()
		}()
	}

	run(0, func() (err error) {
		data.completions, err = s.habitRepo.ListCompletionsInRange(ctx, userID, start, end)
		return
	})
	run(1, func() (err error) {
		data.todosCompleted, err = s.todoRepo.ListCompletedInRange(ctx, userID, start, end)
		return
	})
	run(2, func() (err error) {
		data.todosCreated, err = s.todoRepo.ListCreatedInRange(ctx, userID, start, end)
		return
	})
	run(3, func() (err error) {
		data.reminders, err = s.reminderRepo.ListInRange(ctx, userID, start, end)
		return
	})
	run(4, func() (err error) {
		data.emotions, err = s.emotionRepo.ListInRange(ctx, userID, start, end)
		return
	})
	run(5, func() (err error) {
		data.transcripts, err = s.transcriptRepo.ListInRange(ctx, userID, start, end)
		return
	})
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("日別データの取得に失敗しました: %w", err)
		}
	}
	return data, nil
}

// Range はローカル日の閉区間[startDay, endDay]の日別ビューを昇順で返す。
// 結果に含まれるのはいずれかのカテゴリにデータがある日だけで、
// その日の他のカテゴリは空スライスで埋められる。
func (s *Service) Range(ctx context.Context, userID, startDay, endDay string, loc *time.Location) ([]*DayView, error) {
	bounds, err := localday.BoundsForRange(startDay, endDay, loc)
	if err != nil {
		return nil, model.NewInvalidRangeError(startDay, endDay)
	}

	data, err := s.fetchRange(ctx, userID, bounds.StartUTC, bounds.EndUTC)
	if err != nil {
		return nil, err
	}

	return mergeDays(startDay, endDay, loc, data)
}

// Day は単一ローカル日のビューに現在の習慣と未完了タスクを加えて返す。
func (s *Service) Day(ctx context.Context, userID, day string, loc *time.Location) (*TodayView, error) {
	bounds, err := localday.BoundsForDay(day, loc)
	if err != nil {
		return nil, model.NewInvalidDateError(day)
	}

	data, err := s.fetchRange(ctx, userID, bounds.StartUTC, bounds.EndUTC)
	if err != nil {
		return nil, err
	}

	views, err := mergeDays(day, day, loc, data)
	if err != nil {
		return nil, err
	}

	// 単一日ビューはアクティビティがない日でも空カテゴリ付きで返す
	dayView := &DayView{Day: day}
	dayView.fillEmpty()
	if len(views) == 1 {
		dayView = views[0]
	}

	habits, err := s.habitRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("習慣一覧の取得に失敗しました: %w", err)
	}
	todos, err := s.todoRepo.ListOpenByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("未完了タスクの取得に失敗しました: %w", err)
	}

	view := &TodayView{
		DayView:      *dayView,
		ActiveHabits: habits,
		OpenTodos:    todos,
	}
	if view.ActiveHabits == nil {
		view.ActiveHabits = []*model.Habit{}
	}
	if view.OpenTodos == nil {
		view.OpenTodos = []*model.Todo{}
	}
	return view, nil
}

// mergeDays はカテゴリごとにローカル日キーでグループ化し、日別ビューを
// 昇順で組み立てる。出力の日キー集合は入力の日キー集合の和に一致する。
// データのない日は発明しない。同一エンティティが複数の日に現れることはない
// （互いに素な和）。
func mergeDays(startDay, endDay string, loc *time.Location, data *rangeData) ([]*DayView, error) {
	completions := groupByDay(data.completions, loc, func(c *model.HabitCompletion) time.Time { return c.CompletedAt })
	todosCompleted := groupByDay(data.todosCompleted, loc, func(t *model.Todo) time.Time { return *t.CompletedAt })
	todosCreated := groupByDay(data.todosCreated, loc, func(t *model.Todo) time.Time { return t.CreatedAt })
	reminders := groupByDay(data.reminders, loc, func(r *model.Reminder) time.Time { return r.RemindAt })
	emotions := groupByDay(data.emotions, loc, func(e *model.EmotionalState) time.Time { return e.CreatedAt })
	transcripts := groupByDay(data.transcripts, loc, func(t *model.Transcript) time.Time { return t.CreatedAt })

	start, err := localday.ParseDay(startDay)
	if err != nil {
		return nil, model.NewInvalidDateError(startDay)
	}
	end, err := localday.ParseDay(endDay)
	if err != nil {
		return nil, model.NewInvalidDateError(endDay)
	}

	views := []*DayView{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(localday.KeyFormat)
		if completions[key] == nil && todosCompleted[key] == nil && todosCreated[key] == nil &&
			reminders[key] == nil && emotions[key] == nil && transcripts[key] == nil {
			continue
		}
		view := &DayView{
			Day:             key,
			HabitsCompleted: completions[key],
			TodosCompleted:  todosCompleted[key],
			TodosCreated:    todosCreated[key],
			Reminders:       reminders[key],
			EmotionalStates: emotions[key],
			Transcripts:     transcripts[key],
		}
		view.fillEmpty()
		views = append(views, view)
	}
	return views, nil
}

// fillEmpty はnilのカテゴリを空スライスに置き換える。
// JSON応答でnullではなく[]を返すため。
func (v *DayView) fillEmpty() {
	if v.HabitsCompleted == nil {
		v.HabitsCompleted = []*model.HabitCompletion{}
	}
	if v.TodosCompleted == nil {
		v.TodosCompleted = []*model.Todo{}
	}
	if v.TodosCreated == nil {
		v.TodosCreated = []*model.Todo{}
	}
	if v.Reminders == nil {
		v.Reminders = []*model.Reminder{}
	}
	if v.EmotionalStates == nil {
		v.EmotionalStates = []*model.EmotionalState{}
	}
	if v.Transcripts == nil {
		v.Transcripts = []*model.Transcript{}
	}
}
