// Package transcript は文字起こしの保存と解析パイプラインを提供する。
//
// パイプラインは (1) 生テキストの保存、(2) 現況の収集、(3) オラクルによる解析、
// (4) 解析結果のベストエフォート適用、(5) 解析結果の記録、の順に進む。
// 生テキストは必ず最初に保存され、以降のどの段階が失敗しても失われない。
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/daybook/internal/habit"
	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/metrics"
	"github.com/hitoshi/daybook/internal/model"
	"github.com/hitoshi/daybook/internal/oracle"
	"github.com/hitoshi/daybook/internal/repository"
	"github.com/hitoshi/daybook/internal/security"
	"github.com/hitoshi/daybook/internal/todo"
)

// 承認待ち提案の有効期間。期限を過ぎた提案はクリーンアップジョブが削除する。
const suggestionTTL = 7 * 24 * time.Hour

// オラクル失敗時に文字起こしへ記録する注記。生テキストは保存済みのまま残る。
const oracleFailureNote = "記録は保存されましたが、提案を取得できませんでした。"

// Analyzer は文字起こし解析のインターフェース。
type Analyzer interface {
	// Analyze はプロンプトを解析し、検証済みの構造化応答と保存用バイト列を返す。
	Analyze(ctx context.Context, prompt string) (*model.Analysis, []byte, error)
}

// HabitApplier は解析結果の適用に必要な習慣操作。
type HabitApplier interface {
	List(ctx context.Context, userID string) ([]*model.Habit, error)
	Create(ctx context.Context, userID string, input habit.CreateInput) (*model.Habit, error)
	MarkCompletedByTitles(ctx context.Context, userID string, titles []string, day string, loc *time.Location) (int, error)
}

// TodoApplier は解析結果の適用に必要なタスク操作。
type TodoApplier interface {
	ListOpen(ctx context.Context, userID string) ([]*model.Todo, error)
	Create(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error)
	MarkCompletedByTitles(ctx context.Context, userID string, titles []string) (int64, error)
}

// ReminderApplier は解析結果の適用に必要なリマインダー操作。
// プロンプトに載せるのは今後のリマインダーのみ。過去分は現況に含めない。
type ReminderApplier interface {
	ListUpcoming(ctx context.Context, userID string) ([]*model.Reminder, error)
	Create(ctx context.Context, userID, title string, remindAt time.Time, createdBy model.Source) (*model.Reminder, error)
}

// EmotionApplier は解析結果の適用に必要な感情記録操作。
type EmotionApplier interface {
	ListRecent(ctx context.Context, userID string, days int) ([]*model.EmotionalState, error)
	Create(ctx context.Context, userID, state string, intensity int, note string) (*model.EmotionalState, error)
}

// Service は文字起こしパイプラインのサービス層。
type Service struct {
	transcriptRepo repository.TranscriptRepository
	suggestionRepo repository.SuggestionRepository
	habits         HabitApplier
	todos          TodoApplier
	reminders      ReminderApplier
	emotions       EmotionApplier
	analyzer       Analyzer
	sanitizer      security.TextSanitizerService
	metrics        metrics.MetricsCollector
	logger         *slog.Logger
	now            func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	transcriptRepo repository.TranscriptRepository,
	suggestionRepo repository.SuggestionRepository,
	habits HabitApplier,
	todos TodoApplier,
	reminders ReminderApplier,
	emotions EmotionApplier,
	analyzer Analyzer,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		transcriptRepo: transcriptRepo,
		suggestionRepo: suggestionRepo,
		habits:         habits,
		todos:          todos,
		reminders:      reminders,
		emotions:       emotions,
		analyzer:       analyzer,
		sanitizer:      sanitizer,
		metrics:        collector,
		logger:         logger,
		now:            time.Now,
	}
}

// Create は生の文字起こしテキストを保存する。
func (s *Service) Create(ctx context.Context, userID, text string) (*model.Transcript, error) {
	transcript := &model.Transcript{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      s.sanitizer.Sanitize(text),
		CreatedAt: s.now().UTC(),
	}

	if err := s.transcriptRepo.Create(ctx, transcript); err != nil {
		return nil, fmt.Errorf("文字起こしの保存に失敗しました: %w", err)
	}

	s.logger.Info("transcript saved", "transcript_id", transcript.ID, "user_id", userID)
	return transcript, nil
}

// Get は指定IDの文字起こしを取得する。
func (s *Service) Get(ctx context.Context, userID, transcriptID string) (*model.Transcript, error) {
	transcript, err := s.transcriptRepo.FindByID(ctx, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("文字起こしの取得に失敗しました: %w", err)
	}
	if transcript == nil || transcript.UserID != userID {
		return nil, model.NewTranscriptNotFoundError(transcriptID)
	}
	return transcript, nil
}

// List はユーザーの文字起こし一覧を新しい順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Transcript, error) {
	transcripts, err := s.transcriptRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("文字起こし一覧の取得に失敗しました: %w", err)
	}
	return transcripts, nil
}

// Delete は指定IDの文字起こしを削除する。
func (s *Service) Delete(ctx context.Context, userID, transcriptID string) error {
	if _, err := s.Get(ctx, userID, transcriptID); err != nil {
		return err
	}

	if err := s.transcriptRepo.Delete(ctx, transcriptID); err != nil {
		return fmt.Errorf("文字起こしの削除に失敗しました: %w", err)
	}
	return nil
}

// Process は保存済みの文字起こしを解析し、結果をベストエフォートで適用する。
//
// オラクルが利用できない場合はORACLE_UNAVAILABLEを返し、文字起こしには
// 提案を取得できなかった旨の注記を記録する。生テキストは保存済みのまま残る。
// 適用段階の個別の失敗はログとメトリクスに記録するだけで、ロールバックは
// 行わず残りの段階を続行する。
func (s *Service) Process(ctx context.Context, transcript *model.Transcript, timezone string, loc *time.Location) (*model.Analysis, error) {
	userID := transcript.UserID

	uc, err := s.gatherContext(ctx, userID)
	if err != nil {
		s.metrics.RecordTranscriptProcessed(false)
		s.logger.Error("context gathering failed", "transcript_id", transcript.ID, "error", err)
		return nil, model.NewOracleUnavailableError()
	}

	now := s.now().In(loc)
	prompt := oracle.BuildPrompt(*uc, transcript.Text, timezone, now)

	analysis, raw, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		s.metrics.RecordTranscriptProcessed(false)
		s.logger.Error("oracle analysis failed", "transcript_id", transcript.ID, "error", err)
		s.annotateFailure(ctx, transcript.ID)
		return nil, err
	}

	s.apply(ctx, userID, analysis, loc)

	// 解析結果の記録は処理完了時に一度だけ行う
	summary := strings.Join(analysis.Suggestions, " ")
	if err := s.transcriptRepo.UpdateResult(ctx, transcript.ID, raw, summary); err != nil {
		s.metrics.RecordReconcileStepFailure("record_result")
		s.logger.Error("failed to record analysis result", "transcript_id", transcript.ID, "error", err)
	}

	s.metrics.RecordTranscriptProcessed(true)
	s.logger.Info("transcript processed", "transcript_id", transcript.ID, "user_id", userID)
	return analysis, nil
}

// annotateFailure は提案を取得できなかった旨を文字起こしに記録する。
// この注記がオラクル失敗時の唯一の結果更新となる。
func (s *Service) annotateFailure(ctx context.Context, transcriptID string) {
	annotation, _ := json.Marshal(map[string]string{"error": oracleFailureNote})
	if err := s.transcriptRepo.UpdateResult(ctx, transcriptID, annotation, oracleFailureNote); err != nil {
		s.metrics.RecordReconcileStepFailure("record_result")
		s.logger.Error("failed to annotate transcript", "transcript_id", transcriptID, "error", err)
	}
}

// gatherContext はプロンプトに埋め込むユーザーの現況を並行に収集する。
func (s *Service) gatherContext(ctx context.Context, userID string) (*oracle.UserContext, error) {
	var (
		habits    []*model.Habit
		todos     []*model.Todo
		reminders []*model.Reminder
		emotions  []*model.EmotionalState
	)
	errs := make([]error, 4)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		habits, errs[0] = s.habits.List(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		todos, errs[1] = s.todos.ListOpen(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		reminders, errs[2] = s.reminders.ListUpcoming(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		emotions, errs[3] = s.emotions.ListRecent(ctx, userID, 7)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("現況の収集に失敗しました: %w", err)
		}
	}

	uc := oracle.ContextFromModels(habits, todos, reminders, emotions)
	return &uc, nil
}

// apply は解析結果の各段階をベストエフォートで適用する。
// 失敗した段階は記録して読み飛ばし、後続の段階を続行する。
// 作成に失敗した新規提案は承認待ちとして保存し、後からコミットで再反映できるようにする。
func (s *Service) apply(ctx context.Context, userID string, analysis *model.Analysis, loc *time.Location) {
	today := localday.Today(s.now(), loc)
	var unapplied model.PendingSuggestions

	if analysis.EmotionalState != nil {
		es := analysis.EmotionalState
		if _, err := s.emotions.Create(ctx, userID, es.State, es.Intensity, es.Note); err != nil {
			s.recordStepFailure(userID, "emotion", err)
		}
	}

	for _, suggestion := range analysis.NewHabits {
		_, err := s.habits.Create(ctx, userID, habit.CreateInput{
			Title:        suggestion.Title,
			Description:  suggestion.Description,
			Frequency:    suggestion.Frequency,
			ReminderTime: suggestion.ReminderTime,
			CreatedBy:    model.SourceOracle,
		})
		if err != nil {
			s.recordStepFailure(userID, "new_habits", err)
			unapplied.Habits = append(unapplied.Habits, suggestion)
		}
	}

	if len(analysis.CompletedHabits) > 0 {
		if _, err := s.habits.MarkCompletedByTitles(ctx, userID, analysis.CompletedHabits, today, loc); err != nil {
			s.recordStepFailure(userID, "completed_habits", err)
		}
	}

	for _, suggestion := range analysis.NewTodos {
		input := todo.CreateInput{
			Title:     suggestion.Title,
			Priority:  suggestion.Priority,
			CreatedBy: model.SourceOracle,
		}
		if suggestion.DueDate != "" {
			if due, err := localday.Midnight(suggestion.DueDate, loc); err == nil {
				input.DueDate = &due
			}
		}
		if _, err := s.todos.Create(ctx, userID, input); err != nil {
			s.recordStepFailure(userID, "new_todos", err)
			unapplied.Todos = append(unapplied.Todos, suggestion)
		}
	}

	if len(analysis.CompletedTodos) > 0 {
		if _, err := s.todos.MarkCompletedByTitles(ctx, userID, analysis.CompletedTodos); err != nil {
			s.recordStepFailure(userID, "completed_todos", err)
		}
	}

	for _, suggestion := range analysis.NewReminders {
		remindAt, err := time.Parse(time.RFC3339, suggestion.RemindAt)
		if err != nil {
			s.recordStepFailure(userID, "new_reminders", err)
			continue
		}
		if _, err := s.reminders.Create(ctx, userID, suggestion.Title, remindAt, model.SourceOracle); err != nil {
			s.recordStepFailure(userID, "new_reminders", err)
			unapplied.Reminders = append(unapplied.Reminders, suggestion)
		}
	}

	s.storePendingSuggestions(ctx, userID, &unapplied)
}

// storePendingSuggestions は適用できなかった新規提案を承認待ちとして保存する。
// 反映はクライアントのコミット操作で改めて行われる。
// 未適用の提案が1件もない場合は既存の承認待ち提案に触れない。
func (s *Service) storePendingSuggestions(ctx context.Context, userID string, unapplied *model.PendingSuggestions) {
	if len(unapplied.Habits) == 0 && len(unapplied.Todos) == 0 && len(unapplied.Reminders) == 0 {
		return
	}

	now := s.now().UTC()
	unapplied.ID = uuid.New().String()
	unapplied.UserID = userID
	unapplied.CreatedAt = now
	unapplied.ExpiresAt = now.Add(suggestionTTL)
	if err := s.suggestionRepo.Upsert(ctx, unapplied); err != nil {
		s.recordStepFailure(userID, "pending_suggestions", err)
	}
}

func (s *Service) recordStepFailure(userID, step string, err error) {
	s.metrics.RecordReconcileStepFailure(step)
	s.logger.Warn("reconciliation step failed", "user_id", userID, "step", step, "error", err)
}
