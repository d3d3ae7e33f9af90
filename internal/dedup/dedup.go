// Package dedup は記事の重複除去と件数制限を提供する。
package dedup

import "github.com/hitoshi/dognews/internal/model"

// MaxArticles は1回の取り込みで保持する記事の最大件数。
const MaxArticles = 50

// ByLink は正規化済みLinkを同一性キーとして重複を除去し、最大MaxArticles件に切り詰める。
// 相対順序は保持され、同一Linkの記事は先に現れたものが残る（後続は破棄、マージしない）。
// Linkが空の記事は同一性を判定できないため除外する。
// 純粋関数であり、空入力には空の結果を返す。
func ByLink(articles []model.Article) []model.Article {
	seen := make(map[string]struct{}, len(articles))
	result := make([]model.Article, 0, len(articles))

	for _, a := range articles {
		if a.Link == "" {
			continue
		}
		if _, dup := seen[a.Link]; dup {
			continue
		}
		seen[a.Link] = struct{}{}

		result = append(result, a)
		if len(result) >= MaxArticles {
			break
		}
	}

	return result
}
