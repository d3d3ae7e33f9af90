// Package fetcher はニュースソースからの記事候補の取得を提供する。
//
// HTMLスクレイピングとRSS/Atomフィードパースの2つの戦略があり、
// デプロイ時の設定でどちらか一方が選択される。どちらの戦略も
// エラーを境界の外へ伝播させない。ネットワーク障害・タイムアウト・
// パース失敗はすべて空の候補リストに変換され、後段のフォールバック
// ポリシーに委ねられる。
package fetcher

import (
	"context"

	"github.com/hitoshi/dognews/internal/model"
)

// maxCandidates は1回のフェッチで返す記事候補の最大件数。
const maxCandidates = 50

// SourceFetcher はニュースソースから記事候補を取得するインターフェース。
// 実装はエラーを返さない。失敗時はログに記録した上で空のリストを返す。
type SourceFetcher interface {
	FetchCandidates(ctx context.Context) []model.Candidate
}
