package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hitoshi/dognews/internal/model"
)

// FileSnapshotRepo はスナップショットをUTF-8のJSONファイルとして保存する。
//
// ファイルフォーマットはトップレベルにarticles、lastUpdated、totalCountの
// 3フィールドを持つ単一のJSONドキュメント。書き込みは一時ファイルへの出力と
// renameによる置き換えで行い、読み取り側が書きかけのドキュメントを
// 観測しないことを保証する。
type FileSnapshotRepo struct {
	path string
}

// NewFileSnapshotRepo はFileSnapshotRepoを生成する。
func NewFileSnapshotRepo(path string) *FileSnapshotRepo {
	return &FileSnapshotRepo{path: path}
}

// Load はスナップショットファイルを読み込む。
// ファイルが存在しない場合は (nil, nil) を返す。
func (r *FileSnapshotRepo) Load(_ context.Context) (*model.ArticleCollection, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("スナップショットファイルの読み取りに失敗しました: %w", err)
	}

	var collection model.ArticleCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("スナップショットファイルの解析に失敗しました: %w", err)
	}

	return &collection, nil
}

// Save はスナップショットをJSONファイルとして全置換で保存する。
// 親ディレクトリが存在しない場合は作成する。
func (r *FileSnapshotRepo) Save(_ context.Context, collection *model.ArticleCollection) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("スナップショットディレクトリの作成に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("スナップショットのエンコードに失敗しました: %w", err)
	}

	// 一時ファイルに書き込んでからrenameで置き換える
	tmp, err := os.CreateTemp(dir, ".dog-news-*.json")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("スナップショットの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("一時ファイルのクローズに失敗しました: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("スナップショットの置き換えに失敗しました: %w", err)
	}

	return nil
}
