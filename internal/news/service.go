// Package news はニュース取り込みパイプラインと読み取りパスを提供する。
//
// 取り込みは フェッチ → 正規化 → 重複除去/件数制限 → フォールバック判定 → 永続化 の
// 順に1回の実行内で逐次処理される。フェッチから重複除去までの失敗はすべて
// データ（空リスト、フォールバック代替）に変換され、呼び出し元へエラーとして
// 伝播するのはスナップショットの書き込み失敗のみ。
package news

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dognews/internal/dedup"
	"github.com/hitoshi/dognews/internal/fetcher"
	"github.com/hitoshi/dognews/internal/model"
	"github.com/hitoshi/dognews/internal/normalize"
	"github.com/hitoshi/dognews/internal/repository"
)

// minLiveArticles はライブ取得結果を採用する最小記事数。
// これを下回る取り込み結果はフェッチ失敗と同等に扱い、フォールバックセットで
// 全置換する（マージはしない）。
const minLiveArticles = 5

// maxDisplayArticles は読み取りパスが1回に返す記事の最大件数。
const maxDisplayArticles = 9

// Recorder は取り込みメトリクスの記録インターフェース。
type Recorder interface {
	RecordIngestSuccess(usedFallback bool)
	RecordIngestFailure()
	RecordIngestLatency(d time.Duration)
	RecordArticlesPersisted(count int)
}

// RefreshResult は取り込み実行1回の結果を表す。
type RefreshResult struct {
	Success      bool
	Message      string
	TotalCount   int
	LastUpdated  time.Time
	Elapsed      time.Duration
	UsedFallback bool
}

// NewsPage は読み取りパスが返すレスポンスを表す。
type NewsPage struct {
	Articles    []model.Article
	LastUpdated *time.Time
	TotalCount  int
	Message     string
}

// Service はニュース取り込みと読み取りのドメインサービス。
// フェッチ戦略とスナップショットバックエンドは注入され、テストではフェイクに
// 差し替えられる。
type Service struct {
	fetcher    fetcher.SourceFetcher
	repo       repository.SnapshotRepository
	normalizer *normalize.Normalizer
	metrics    Recorder
	logger     *slog.Logger
	now        func() time.Time

	// mu は取り込み実行を直列化する。定期実行と手動トリガーが重なった場合、
	// 後発は先発の完了を待つ（スナップショットへの同時書き込みを防ぐ）。
	mu sync.Mutex
}

// NewService はServiceを生成する。
func NewService(
	f fetcher.SourceFetcher,
	repo repository.SnapshotRepository,
	normalizer *normalize.Normalizer,
	metrics Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		fetcher:    f,
		repo:       repo,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh は取り込みパイプラインを1回実行し、スナップショットを全置換する。
//
// ライブ取得の結果がminLiveArticles件未満（0件を含む）の場合、および
// ライブ取得の過程で予期しない失敗があった場合は、固定のフォールバック
// セットを代わりに永続化する。この場合も実行は成功として報告される。
// 失敗として返るのはスナップショットの書き込みエラーのみ。
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.New().String()
	start := s.now()

	s.logger.Info("ニュース取り込みを開始します",
		slog.String("run_id", runID),
	)

	articles := s.collectLive(ctx, runID)

	usedFallback := false
	if len(articles) < minLiveArticles {
		s.logger.Info("ライブ記事が不足しているためフォールバックセットを使用します",
			slog.String("run_id", runID),
			slog.Int("live_count", len(articles)),
			slog.Int("min_required", minLiveArticles),
		)
		articles = FallbackArticles(s.now())
		usedFallback = true
	}

	collection := &model.ArticleCollection{
		Articles:    articles,
		LastUpdated: s.now(),
		TotalCount:  len(articles),
	}

	if err := s.repo.Save(ctx, collection); err != nil {
		s.metrics.RecordIngestFailure()
		s.logger.Error("スナップショットの保存に失敗しました",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSnapshotWriteError(err.Error())
	}

	elapsed := s.now().Sub(start)
	s.metrics.RecordIngestSuccess(usedFallback)
	s.metrics.RecordIngestLatency(elapsed)
	s.metrics.RecordArticlesPersisted(len(articles))

	message := fmt.Sprintf("%d件のニュース記事を更新しました。", len(articles))
	if usedFallback {
		message = fmt.Sprintf("デフォルトニュース%d件を設定しました。", len(articles))
	}

	s.logger.Info("ニュース取り込みが完了しました",
		slog.String("run_id", runID),
		slog.Int("article_count", len(articles)),
		slog.Bool("used_fallback", usedFallback),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
	)

	return &RefreshResult{
		Success:      true,
		Message:      message,
		TotalCount:   collection.TotalCount,
		LastUpdated:  collection.LastUpdated,
		Elapsed:      elapsed,
		UsedFallback: usedFallback,
	}, nil
}

// collectLive はフェッチから重複除去までのライブ取得パスを実行する。
// パイプライン内部のpanicもここで回収し、空の結果に変換する。取り込み実行が
// 例外で中断してスナップショットを更新し損ねることは許容しない。
func (s *Service) collectLive(ctx context.Context, runID string) (articles []model.Article) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("ライブ取得中にpanicが発生しました",
				slog.String("run_id", runID),
				slog.Any("panic", rec),
			)
			articles = nil
		}
	}()

	candidates := s.fetcher.FetchCandidates(ctx)
	normalized := s.normalizer.NormalizeAll(candidates, s.now())
	return dedup.ByLink(normalized)
}

// Latest は最後に永続化されたスナップショットから表示用の記事を返す。
//
// スナップショットが存在しない場合は空のリストとnilのLastUpdated、および
// 取り込み未実行である旨のメッセージを返す（同期フェッチは行わない）。
// ストレージの読み取りエラーも「スナップショットなし」として扱い、
// 呼び出し元を失敗させない。
func (s *Service) Latest(ctx context.Context) *NewsPage {
	collection, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("スナップショットの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		collection = nil
	}

	if collection == nil {
		return &NewsPage{
			Articles:   []model.Article{},
			TotalCount: 0,
			Message:    "ニュースデータがまだありません。POST /api/news を呼び出して取り込みを実行してください。",
		}
	}

	display := collection.Articles
	if len(display) > maxDisplayArticles {
		display = display[:maxDisplayArticles]
	}

	lastUpdated := collection.LastUpdated
	return &NewsPage{
		Articles:    display,
		LastUpdated: &lastUpdated,
		TotalCount:  collection.TotalCount,
	}
}
