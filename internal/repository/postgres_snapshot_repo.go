package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hitoshi/dognews/internal/model"
)

// snapshotRowID はスナップショットを保持する単一行の固定ID。
// スナップショットは常に全置換されるため、行は1つしか存在しない。
const snapshotRowID = 1

// PostgresSnapshotRepo はPostgreSQLを使用したスナップショットリポジトリ。
// 記事リストはjsonbカラムに格納し、単一行のUPSERTで全置換する。
type PostgresSnapshotRepo struct {
	db *sql.DB
}

// NewPostgresSnapshotRepo はPostgresSnapshotRepoを生成する。
func NewPostgresSnapshotRepo(db *sql.DB) *PostgresSnapshotRepo {
	return &PostgresSnapshotRepo{db: db}
}

// Load は最後に保存されたスナップショットを取得する。
// 行が存在しない場合は (nil, nil) を返す。
func (r *PostgresSnapshotRepo) Load(ctx context.Context) (*model.ArticleCollection, error) {
	var articlesJSON []byte
	var lastUpdated time.Time
	var totalCount int

	err := r.db.QueryRowContext(ctx,
		`SELECT articles, last_updated, total_count
		 FROM news_snapshots WHERE id = $1`,
		snapshotRowID,
	).Scan(&articlesJSON, &lastUpdated, &totalCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スナップショットの取得に失敗しました: %w", err)
	}

	var articles []model.Article
	if err := json.Unmarshal(articlesJSON, &articles); err != nil {
		return nil, fmt.Errorf("スナップショットの記事リストの解析に失敗しました: %w", err)
	}

	return &model.ArticleCollection{
		Articles:    articles,
		LastUpdated: lastUpdated,
		TotalCount:  totalCount,
	}, nil
}

// Save はスナップショットを単一行のUPSERTで全置換する。
func (r *PostgresSnapshotRepo) Save(ctx context.Context, collection *model.ArticleCollection) error {
	articlesJSON, err := json.Marshal(collection.Articles)
	if err != nil {
		return fmt.Errorf("スナップショットの記事リストのエンコードに失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO news_snapshots (id, articles, last_updated, total_count)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
		     articles = EXCLUDED.articles,
		     last_updated = EXCLUDED.last_updated,
		     total_count = EXCLUDED.total_count`,
		snapshotRowID, articlesJSON, collection.LastUpdated, collection.TotalCount,
	)
	if err != nil {
		return fmt.Errorf("スナップショットの保存に失敗しました: %w", err)
	}

	return nil
}
