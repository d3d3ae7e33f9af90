package dedup

import (
	"fmt"
	"testing"

	"github.com/hitoshi/dognews/internal/model"
)

func makeArticles(n int) []model.Article {
	articles := make([]model.Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, model.Article{
			Title: fmt.Sprintf("記事%d", i),
			Link:  fmt.Sprintf("https://example.com/%d", i),
		})
	}
	return articles
}

func TestByLink_RemovesDuplicatesFirstWins(t *testing.T) {
	articles := []model.Article{
		{Title: "最初の記事", Link: "https://example.com/a"},
		{Title: "別の記事", Link: "https://example.com/b"},
		{Title: "重複記事（後発）", Link: "https://example.com/a"},
	}

	got := ByLink(articles)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "最初の記事" {
		t.Errorf("got[0].Title = %q, want first occurrence kept", got[0].Title)
	}
	if got[1].Title != "別の記事" {
		t.Errorf("got[1].Title = %q", got[1].Title)
	}
}

func TestByLink_PreservesOrder(t *testing.T) {
	articles := makeArticles(10)

	got := ByLink(articles)

	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i := range got {
		if got[i].Link != articles[i].Link {
			t.Errorf("got[%d].Link = %q, want %q", i, got[i].Link, articles[i].Link)
		}
	}
}

func TestByLink_CapsAtMaxArticles(t *testing.T) {
	articles := makeArticles(80)

	got := ByLink(articles)

	if len(got) != MaxArticles {
		t.Fatalf("len = %d, want %d", len(got), MaxArticles)
	}
	// 先頭からMaxArticles件が保持される
	if got[0].Link != articles[0].Link {
		t.Errorf("got[0].Link = %q, want %q", got[0].Link, articles[0].Link)
	}
	if got[MaxArticles-1].Link != articles[MaxArticles-1].Link {
		t.Errorf("last link = %q, want %q", got[MaxArticles-1].Link, articles[MaxArticles-1].Link)
	}
}

func TestByLink_SkipsEmptyLinks(t *testing.T) {
	articles := []model.Article{
		{Title: "リンクなし", Link: ""},
		{Title: "リンクあり", Link: "https://example.com/a"},
		{Title: "こちらもリンクなし", Link: ""},
	}

	got := ByLink(articles)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Link != "https://example.com/a" {
		t.Errorf("got[0].Link = %q", got[0].Link)
	}
}

func TestByLink_Idempotent(t *testing.T) {
	articles := []model.Article{
		{Title: "A", Link: "https://example.com/a"},
		{Title: "B", Link: "https://example.com/b"},
		{Title: "A再掲", Link: "https://example.com/a"},
	}

	once := ByLink(articles)
	twice := ByLink(once)

	if len(once) != len(twice) {
		t.Fatalf("len(once) = %d, len(twice) = %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("element %d differs after second pass", i)
		}
	}
}

func TestByLink_EmptyInput(t *testing.T) {
	if got := ByLink(nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
