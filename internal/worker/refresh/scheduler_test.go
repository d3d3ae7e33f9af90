package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/dognews/internal/news"
)

// mockRefreshService はRefreshServiceのモック実装。
type mockRefreshService struct {
	mu        sync.Mutex
	callCount int
	err       error
}

func (m *mockRefreshService) Refresh(ctx context.Context) (*news.RefreshResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return &news.RefreshResult{
		Success:    true,
		TotalCount: 9,
	}, nil
}

func (m *mockRefreshService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunOnce_CallsRefresh(t *testing.T) {
	svc := &mockRefreshService{}
	s := NewScheduler(svc, testLogger())

	s.RunOnce(context.Background())

	if svc.calls() != 1 {
		t.Errorf("callCount = %d, want 1", svc.calls())
	}
}

func TestRunOnce_RefreshError_DoesNotPanic(t *testing.T) {
	svc := &mockRefreshService{err: errors.New("snapshot write failed")}
	s := NewScheduler(svc, testLogger())

	// エラーはログに記録されるのみ
	s.RunOnce(context.Background())

	if svc.calls() != 1 {
		t.Errorf("callCount = %d, want 1", svc.calls())
	}
}

func TestStart_RunsImmediatelyThenStopsOnCancel(t *testing.T) {
	svc := &mockRefreshService{}
	s := NewScheduler(svc, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	// 起動直後の1回目の実行を待つ
	deadline := time.After(2 * time.Second)
	for svc.calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler did not run initial refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}

	// 間隔が1時間なので実行は起動時の1回だけ
	if svc.calls() != 1 {
		t.Errorf("callCount = %d, want 1", svc.calls())
	}
}

func TestStart_TicksAtInterval(t *testing.T) {
	svc := &mockRefreshService{}
	s := NewScheduler(svc, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Start(ctx, 20*time.Millisecond)
		close(done)
	}()

	// 初回実行 + 少なくとも1回のティック
	deadline := time.After(2 * time.Second)
	for svc.calls() < 2 {
		select {
		case <-deadline:
			t.Fatalf("callCount = %d, want at least 2", svc.calls())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
