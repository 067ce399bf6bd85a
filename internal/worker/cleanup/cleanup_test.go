package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// --- モック ---

type mockPruner struct {
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockPruner) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

type mockTodoPruner struct {
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockTodoPruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- テスト ---

func TestRun_DeletesAllCategories(t *testing.T) {
	var sessionsCalled, suggestionsCalled bool
	var gotCutoff time.Time

	sessions := &mockPruner{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			sessionsCalled = true
			return 3, nil
		},
	}
	suggestions := &mockPruner{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			suggestionsCalled = true
			return 2, nil
		},
	}
	todos := &mockTodoPruner{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 5, nil
		},
	}

	job := NewCleanupJob(sessions, suggestions, todos, discardLogger())
	fixedNow := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixedNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !sessionsCalled || !suggestionsCalled {
		t.Error("expected all pruners to be called")
	}

	wantCutoff := fixedNow.AddDate(0, 0, -30)
	if !gotCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, wantCutoff)
	}
}

func TestRun_RetentionDaysIsConfigurable(t *testing.T) {
	var gotCutoff time.Time
	todos := &mockTodoPruner{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 0, nil
		},
	}

	job := NewCleanupJob(nil, nil, todos, discardLogger())
	job.RetentionDays = 90
	fixedNow := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixedNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantCutoff := fixedNow.AddDate(0, 0, -90)
	if !gotCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, wantCutoff)
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	sessions := &mockPruner{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	todosCalled := false
	todos := &mockTodoPruner{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			todosCalled = true
			return 1, nil
		},
	}

	job := NewCleanupJob(sessions, &mockPruner{}, todos, discardLogger())

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error to be reported")
	}
	if !todosCalled {
		t.Error("remaining pruners should still run after a failure")
	}
}
