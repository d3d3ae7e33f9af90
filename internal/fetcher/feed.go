package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/dognews/internal/model"
	"github.com/hitoshi/dognews/internal/security"
)

// feedUserAgent はフィード取得で使用するUser-Agent。
const feedUserAgent = "DogNews/1.0 RSS Reader"

// imgSrcPattern はHTMLコンテンツから最初のimgタグのsrcを抽出する正規表現。
// media:content等の構造化フィールドが無いフィードのサムネイル回収に使用する。
var imgSrcPattern = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// FeedFetcher は固定のフィードURLからRSS/Atomフィードを取得・パースして
// 記事候補を抽出するフェッチ戦略。
type FeedFetcher struct {
	feedURL     string
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// NewFeedFetcher はFeedFetcherを生成する。
func NewFeedFetcher(
	feedURL string,
	ssrfGuard security.SSRFGuardService,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
) *FeedFetcher {
	return &FeedFetcher{
		feedURL:     feedURL,
		client:      ssrfGuard.NewSafeClient(timeout),
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// FetchCandidates はフィードを取得・パースし、記事候補を抽出して返す。
// ネットワーク・HTTPステータス・パースのいずれの失敗も空リストに変換する。
func (f *FeedFetcher) FetchCandidates(ctx context.Context) []model.Candidate {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		f.logger.Error("フィードリクエストの作成に失敗しました",
			slog.String("feed_url", f.feedURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("フィードの取得に失敗しました",
			slog.String("feed_url", f.feedURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("フィードが異常なステータスを返しました",
			slog.String("feed_url", f.feedURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("フィードボディの読み取りに失敗しました",
			slog.String("feed_url", f.feedURL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		f.logger.Error("フィードのパースに失敗しました",
			slog.String("feed_url", f.feedURL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	candidates := make([]model.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(candidates) >= maxCandidates {
			break
		}
		if item == nil {
			continue
		}

		c := convertItem(item)
		if c == nil {
			continue
		}
		candidates = append(candidates, *c)
	}

	f.logger.Info("フィードから記事候補を抽出しました",
		slog.String("feed_url", f.feedURL),
		slog.Int("candidate_count", len(candidates)),
	)

	return candidates
}

// convertItem はフィード記事1件を記事候補に変換する。
// リンクもタイトルも取得できない記事はnilを返して除外する。
func convertItem(item *gofeed.Item) *model.Candidate {
	link := item.Link
	if link == "" && isHTTPURL(item.GUID) {
		link = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return nil
	}

	var publishedAt *time.Time
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		publishedAt = &t
	} else if item.UpdatedParsed != nil {
		t := *item.UpdatedParsed
		publishedAt = &t
	}

	// 説明文はContentを優先し、無ければDescriptionを使う。
	// HTMLのままNormalizerに渡し、タグ除去・実体参照のデコードはそちらで行う。
	description := item.Content
	if description == "" {
		description = item.Description
	}

	return &model.Candidate{
		Title:       title,
		Link:        link,
		Thumbnail:   extractThumbnail(item),
		Description: description,
		PublishedAt: publishedAt,
	}
}

// extractThumbnail はフィード記事からサムネイルURLを回収する。
// 優先順位: media:content拡張 > フィード組み込みのimage > HTMLコンテンツ中の最初のimg。
func extractThumbnail(item *gofeed.Item) string {
	// media:content拡張（media RSS）
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
		for _, ext := range media["thumbnail"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	// HTMLコンテンツを正規表現で走査し、最初のimgタグのsrcを採用する
	for _, html := range []string{item.Content, item.Description} {
		if m := imgSrcPattern.FindStringSubmatch(html); m != nil {
			return m[1]
		}
	}

	return ""
}

// isHTTPURL は文字列がhttp/httpsのURLかを判定する。
func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
