package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hitoshi/dognews/internal/model"
)

func testCollection(n int) *model.ArticleCollection {
	articles := make([]model.Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, model.Article{
			Title:  "テスト記事",
			Link:   "https://example.com/1",
			Source: "テストソース",
			Date:   "2026-03-01T12:00:00Z",
		})
	}
	return &model.ArticleCollection{
		Articles:    articles,
		LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TotalCount:  n,
	}
}

func TestFileSnapshotRepo_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	repo := NewFileSnapshotRepo(path)
	ctx := context.Background()

	saved := testCollection(3)
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected non-nil collection")
	}
	if loaded.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", loaded.TotalCount)
	}
	if len(loaded.Articles) != 3 {
		t.Errorf("Articles length = %d, want 3", len(loaded.Articles))
	}
	if !loaded.LastUpdated.Equal(saved.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", loaded.LastUpdated, saved.LastUpdated)
	}
}

func TestFileSnapshotRepo_LoadMissingFile_ReturnsNilNil(t *testing.T) {
	repo := NewFileSnapshotRepo(filepath.Join(t.TempDir(), "missing.json"))

	loaded, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if loaded != nil {
		t.Error("expected nil collection for missing file")
	}
}

func TestFileSnapshotRepo_LoadCorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{壊れたJSON"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo := NewFileSnapshotRepo(path)

	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestFileSnapshotRepo_SaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snapshot.json")
	repo := NewFileSnapshotRepo(path)

	if err := repo.Save(context.Background(), testCollection(1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file not created: %v", err)
	}
}

func TestFileSnapshotRepo_SaveReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	repo := NewFileSnapshotRepo(path)
	ctx := context.Background()

	if err := repo.Save(ctx, testCollection(5)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := repo.Save(ctx, testCollection(2)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2 (full replacement)", loaded.TotalCount)
	}

	// 一時ファイルが残らないこと
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory entries = %d, want 1 (no leftover temp files)", len(entries))
	}
}

func TestFileSnapshotRepo_WritesExpectedJSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	repo := NewFileSnapshotRepo(path)

	if err := repo.Save(context.Background(), testCollection(1)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"articles", "lastUpdated", "totalCount"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
}
