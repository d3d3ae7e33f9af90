// Package refresh はニュース取り込みの定期実行を提供する。
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/dognews/internal/news"
)

// RefreshService はニュース取り込みの実行インターフェース。
type RefreshService interface {
	// Refresh は取り込みパイプラインを1回実行する。
	Refresh(ctx context.Context) (*news.RefreshResult, error)
}

// Scheduler はニュース取り込みを固定間隔で定期実行する。
// 実行の直列化はサービス側で保証されるため、手動トリガーと重なっても
// スナップショットが壊れることはない。
type Scheduler struct {
	service RefreshService
	logger  *slog.Logger
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(service RefreshService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service: service,
		logger:  logger,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
// 取り込みの失敗はログに記録するのみで、スケジューラは停止しない。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("取り込みスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("取り込みスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce はニュース取り込みを1回実行し、結果をログに記録する。
func (s *Scheduler) RunOnce(ctx context.Context) {
	result, err := s.service.Refresh(ctx)
	if err != nil {
		s.logger.Error("定期取り込みの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("定期取り込みが完了しました",
		slog.Int("total_count", result.TotalCount),
		slog.Bool("used_fallback", result.UsedFallback),
		slog.Duration("elapsed", result.Elapsed),
	)
}
