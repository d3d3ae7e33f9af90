// Package model はドメインモデルを定義する。
package model

import "time"

// Article は正規化済みのニュース記事1件を表す。
// Linkが記事の同一性キーとなり、同一Link の記事は同一記事とみなされる。
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	Date        string `json:"date"` // RFC3339形式
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
}

// ArticleCollection は1回の取り込み実行で永続化されるスナップショット全体を表す。
// 部分更新は行わず、常にコレクション全体が置き換え単位となる。
type ArticleCollection struct {
	Articles    []Article `json:"articles"`
	LastUpdated time.Time `json:"lastUpdated"`
	TotalCount  int       `json:"totalCount"`
}

// Candidate はフェッチ戦略が抽出した未正規化の記事候補を表す。
// Normalizerに渡された後、Articleに変換される。
type Candidate struct {
	Title       string
	Link        string
	Thumbnail   string
	Description string     // 未サニタイズのHTMLを含みうる
	PublishedAt *time.Time // ソースから取得できない場合はnil
}
