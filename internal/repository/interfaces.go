// Package repository はスナップショットの永続化層を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/dognews/internal/model"
)

// SnapshotRepository はArticleCollectionスナップショットの保存・読み込みの
// インターフェース。バックエンド（ファイル/PostgreSQL）はこの narrow interface の
// 背後で差し替え可能であり、パイプラインロジックはバックエンドに依存しない。
type SnapshotRepository interface {
	// Load は最後に永続化されたスナップショットを読み込む。
	// スナップショットが存在しない場合は (nil, nil) を返す。
	Load(ctx context.Context) (*model.ArticleCollection, error)

	// Save はスナップショットを全置換で保存する。部分更新は行わない。
	Save(ctx context.Context, collection *model.ArticleCollection) error
}
