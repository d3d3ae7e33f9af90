package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hitoshi/dognews/internal/model"
	"github.com/hitoshi/dognews/internal/security"
)

// browserUserAgent はスクレイピングで使用するブラウザ相当のUser-Agent。
// ニュースサイトの中にはボット由来のUAへ空ページを返すものがあるため。
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// articleListSelectors は記事リストコンテナとして既知のクラス名セレクタ。
const articleListSelectors = ".list_article li, .article_list li, .news_list li"

// タイトル属性ヒューリスティックで許容するタイトル文字数の範囲。
const (
	minTitleRunes = 10
	maxTitleRunes = 200
)

// ScrapeFetcher はニュースサイトのHTMLトップページをスクレイピングして
// 記事候補を抽出するフェッチ戦略。
//
// 2つのヒューリスティックを順に適用して結果をマージする:
//  1. title属性を持つaタグ（タイトル長が10〜200文字のもの）
//  2. 既知の記事リストコンテナ内のliに含まれるaタグ
//
// 各候補のサムネイルは最も近い子孫imgのsrcまたはdata-src属性から取得する。
type ScrapeFetcher struct {
	sourceURL   string
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// NewScrapeFetcher はScrapeFetcherを生成する。
// HTTPクライアントはSSRFガードから取得し、タイムアウトとレスポンスサイズを制限する。
func NewScrapeFetcher(
	sourceURL string,
	ssrfGuard security.SSRFGuardService,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
) *ScrapeFetcher {
	return &ScrapeFetcher{
		sourceURL:   sourceURL,
		client:      ssrfGuard.NewSafeClient(timeout),
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// FetchCandidates はソースサイトのHTMLを取得し、記事候補を抽出して返す。
// ネットワーク・HTTPステータス・パースのいずれの失敗も空リストに変換する。
func (f *ScrapeFetcher) FetchCandidates(ctx context.Context) []model.Candidate {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		f.logger.Error("スクレイピングリクエストの作成に失敗しました",
			slog.String("source_url", f.sourceURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("ソースサイトの取得に失敗しました",
			slog.String("source_url", f.sourceURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("ソースサイトが異常なステータスを返しました",
			slog.String("source_url", f.sourceURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Error("HTMLのパースに失敗しました",
			slog.String("source_url", f.sourceURL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	candidates := f.extractCandidates(doc)

	f.logger.Info("スクレイピングで記事候補を抽出しました",
		slog.String("source_url", f.sourceURL),
		slog.Int("candidate_count", len(candidates)),
	)

	return candidates
}

// extractCandidates は2つのヒューリスティックを順に適用し、抽出結果をマージする。
// 最大maxCandidates件で打ち切る。重複除去は後段のdedupに委ねる。
func (f *ScrapeFetcher) extractCandidates(doc *goquery.Document) []model.Candidate {
	var candidates []model.Candidate

	// パターン1: title属性を持つaタグ
	doc.Find("a[title]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.AttrOr("title", ""))
		href := sel.AttrOr("href", "")

		if !isPlausibleTitle(title) || href == "" {
			return true
		}

		candidates = append(candidates, model.Candidate{
			Title:     title,
			Link:      href,
			Thumbnail: findThumbnail(sel),
		})
		return len(candidates) < maxCandidates
	})

	// パターン2: 既知の記事リストコンテナ内のli要素
	doc.Find(articleListSelectors).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(link.AttrOr("title", ""))
		}
		href := link.AttrOr("href", "")

		if !isPlausibleTitle(title) || href == "" {
			return true
		}

		candidates = append(candidates, model.Candidate{
			Title:     title,
			Link:      href,
			Thumbnail: findThumbnail(sel),
		})
		return len(candidates) < maxCandidates
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}

// isPlausibleTitle はタイトル長ヒューリスティック（10〜200文字）を検証する。
func isPlausibleTitle(title string) bool {
	n := len([]rune(title))
	return n > minTitleRunes && n < maxTitleRunes
}

// findThumbnail は要素の最も近い子孫imgからサムネイルURLを取得する。
// src属性を優先し、遅延読み込み用のdata-src属性にフォールバックする。
func findThumbnail(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if src := img.AttrOr("src", ""); src != "" {
		return src
	}
	return img.AttrOr("data-src", "")
}
