package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/dognews/internal/model"
)

// PostgresSnapshotRepoはSnapshotRepositoryインターフェースを満たすことを検証
func TestPostgresSnapshotRepo_ImplementsInterface(t *testing.T) {
	var _ SnapshotRepository = (*PostgresSnapshotRepo)(nil)
}

// NewPostgresSnapshotRepoが正しく初期化されることを検証
func TestNewPostgresSnapshotRepo_Initializes(t *testing.T) {
	repo := NewPostgresSnapshotRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ArticleCollectionモデルのフィールドが正しく構築されることを検証
func TestPostgresSnapshotRepo_CollectionModel_Fields(t *testing.T) {
	now := time.Now()
	collection := &model.ArticleCollection{
		Articles: []model.Article{
			{
				Title:  "犬の分離不安を和らげる5つの習慣",
				Link:   "https://example.com/articles/1",
				Source: "テストニュース",
				Date:   now.Format(time.RFC3339),
			},
		},
		LastUpdated: now,
		TotalCount:  1,
	}

	if len(collection.Articles) != 1 {
		t.Fatalf("len(Articles) = %d, want 1", len(collection.Articles))
	}
	if collection.Articles[0].Link != "https://example.com/articles/1" {
		t.Errorf("Link = %q, want %q", collection.Articles[0].Link, "https://example.com/articles/1")
	}
	if collection.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", collection.TotalCount)
	}
}

// Articleのオプショナルフィールドがゼロ値を許容することを検証
func TestPostgresSnapshotRepo_ArticleModel_OptionalFields(t *testing.T) {
	article := model.Article{
		Title:  "タイトルのみの記事",
		Link:   "https://example.com/articles/2",
		Source: "テストニュース",
		Date:   time.Now().Format(time.RFC3339),
	}

	if article.Thumbnail != "" {
		t.Error("thumbnail should be empty by default")
	}
	if article.Description != "" {
		t.Error("description should be empty by default")
	}
}
