// Package normalize はフェッチ戦略が抽出した記事候補を正規化済みのArticleに変換する。
//
// 正規化は純粋な変換処理であり、I/Oを行わない。不正な入力（欠損フィールド等）は
// エラーにせず、空値へのフォールバックで解決する。
package normalize

import (
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/dognews/internal/model"
)

// maxTitleLength はタイトルの最大文字数。超過分は切り捨てる。
const maxTitleLength = 200

// maxDescriptionLength は説明文の最大文字数。超過時は省略記号を付与する。
const maxDescriptionLength = 200

// ellipsis は説明文が切り詰められた場合に付与する省略記号。
const ellipsis = "..."

// Normalizer は記事候補をArticleに変換する。
// ソースラベルとベースURLを保持し、相対URLの解決と出所の付与を行う。
type Normalizer struct {
	sourceName string
	baseURL    *url.URL
	stripper   *bluemonday.Policy
}

// New はNormalizerを生成する。
// baseURLのパースに失敗した場合、相対URLは解決されずそのまま残る。
func New(sourceName, baseURL string) *Normalizer {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		parsed = nil
	}
	return &Normalizer{
		sourceName: sourceName,
		baseURL:    parsed,
		stripper:   bluemonday.StrictPolicy(),
	}
}

// Normalize は記事候補1件をArticleに変換する。
// 公開日時が取得できなかった候補には処理時刻nowを割り当てる。
// 日付は常にRFC3339形式で出力する。相対時刻文字列のパススルーは行わない。
func (n *Normalizer) Normalize(c model.Candidate, now time.Time) model.Article {
	date := now
	if c.PublishedAt != nil {
		date = *c.PublishedAt
	}

	return model.Article{
		Title:       Truncate(n.CleanText(c.Title), maxTitleLength),
		Link:        n.ResolveURL(c.Link),
		Source:      n.sourceName,
		Date:        date.Format(time.RFC3339),
		Thumbnail:   n.ResolveURL(c.Thumbnail),
		Description: TruncateWithEllipsis(n.CleanText(c.Description), maxDescriptionLength),
	}
}

// NormalizeAll は記事候補のリストを順序を保ってArticleのリストに変換する。
func (n *Normalizer) NormalizeAll(candidates []model.Candidate, now time.Time) []model.Article {
	articles := make([]model.Article, 0, len(candidates))
	for _, c := range candidates {
		articles = append(articles, n.Normalize(c, now))
	}
	return articles
}

// CleanText はHTMLタグを除去し、HTML実体参照（&amp;、&nbsp;、数値文字参照等）を
// デコードし、連続する空白を1つのスペースに正規化した上でトリムする。
// 同一入力に対して常に同一出力を返す（冪等）。
func (n *Normalizer) CleanText(raw string) string {
	if raw == "" {
		return ""
	}

	// タグ境界にスペースを挿入してから除去する。隣接する要素のテキストが
	// 連結されないようにするため（余分なスペースは後段の畳み込みで消える）。
	spaced := strings.ReplaceAll(raw, ">", "> ")

	// bluemondayのStrictPolicyで全タグを除去する。出力はHTMLエスケープされた
	// テキストになるため、続けて実体参照をデコードする。
	stripped := n.stripper.Sanitize(spaced)
	unescaped := html.UnescapeString(stripped)

	// 空白の正規化: 連続空白（改行・タブ含む）を1スペースに畳み込む
	fields := strings.Fields(unescaped)
	return strings.Join(fields, " ")
}

// ResolveURL は相対URLをベースURLに対して解決する。
// 絶対URLはそのまま返し、空文字列には空文字列を返す。
func (n *Normalizer) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if n.baseURL == nil {
		return raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return n.baseURL.ResolveReference(ref).String()
}

// Truncate は文字列を最大max文字（rune単位）に切り詰める。省略記号は付与しない。
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// TruncateWithEllipsis は文字列を最大max文字（rune単位）に切り詰め、
// 切り詰めが発生した場合のみ末尾に省略記号を付与する。
// max文字ちょうどの入力は切り詰めなしでそのまま返す。
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + ellipsis
}
