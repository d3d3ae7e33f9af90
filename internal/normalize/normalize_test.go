package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dognews/internal/model"
)

func TestCleanText_StripsHTMLTags(t *testing.T) {
	n := New("テストソース", "https://example.com")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "タグなしテキストはそのまま",
			input: "犬のしつけ基礎講座",
			want:  "犬のしつけ基礎講座",
		},
		{
			name:  "インラインタグの除去",
			input: "<b>犬の</b>ニュース",
			want:  "犬の ニュース",
		},
		{
			name:  "ブロックタグの除去と空白正規化",
			input: "<p>第一段落</p>\n<p>第二段落</p>",
			want:  "第一段落 第二段落",
		},
		{
			name:  "HTML実体参照のデコード",
			input: "Dogs &amp; Cats&nbsp;News",
			want:  "Dogs & Cats News",
		},
		{
			name:  "数値文字参照のデコード",
			input: "&#54620;&#44397;",
			want:  "한국",
		},
		{
			name:  "連続空白の畳み込み",
			input: "  犬の \t\n ニュース  ",
			want:  "犬の ニュース",
		},
		{
			name:  "空文字列",
			input: "",
			want:  "",
		},
		{
			name:  "scriptタグの除去",
			input: "<script>alert('x')</script>本文",
			want:  "本文",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.CleanText(tt.input)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	n := New("テストソース", "https://example.com")

	input := "<p>Dogs &amp; <b>Cats</b></p>"
	once := n.CleanText(input)
	twice := n.CleanText(once)

	if once != twice {
		t.Errorf("CleanText is not idempotent: first = %q, second = %q", once, twice)
	}
}

func TestTruncate_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantLen int
	}{
		{"最大未満はそのまま", 199, 199},
		{"最大ちょうどはそのまま", 200, 200},
		{"最大超過は切り詰め", 201, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("あ", tt.length)
			got := Truncate(input, 200)
			if len([]rune(got)) != tt.wantLen {
				t.Errorf("len = %d, want %d", len([]rune(got)), tt.wantLen)
			}
			if strings.HasSuffix(got, "...") {
				t.Error("Truncate should not append ellipsis")
			}
		})
	}
}

func TestTruncateWithEllipsis_Boundaries(t *testing.T) {
	tests := []struct {
		name         string
		length       int
		wantLen      int
		wantEllipsis bool
	}{
		{"最大未満はそのまま", 199, 199, false},
		{"最大ちょうどは省略記号なし", 200, 200, false},
		{"最大超過は切り詰めて省略記号付与", 201, 203, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("あ", tt.length)
			got := TruncateWithEllipsis(input, 200)
			if len([]rune(got)) != tt.wantLen {
				t.Errorf("len = %d, want %d", len([]rune(got)), tt.wantLen)
			}
			if strings.HasSuffix(got, "...") != tt.wantEllipsis {
				t.Errorf("ellipsis = %v, want %v", strings.HasSuffix(got, "..."), tt.wantEllipsis)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	n := New("テストソース", "https://www.koreadognews.co.kr")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "絶対URLはそのまま",
			input: "https://other.example.com/article/1",
			want:  "https://other.example.com/article/1",
		},
		{
			name:  "httpの絶対URLもそのまま",
			input: "http://other.example.com/article/2",
			want:  "http://other.example.com/article/2",
		},
		{
			name:  "ルート相対パスの解決",
			input: "/news/123",
			want:  "https://www.koreadognews.co.kr/news/123",
		},
		{
			name:  "空文字列は空のまま",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ResolveURL(tt.input)
			if got != tt.want {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_AssignsSourceAndDate(t *testing.T) {
	n := New("한국애견신문", "https://www.koreadognews.co.kr")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	published := time.Date(2026, 2, 28, 9, 30, 0, 0, time.UTC)
	article := n.Normalize(model.Candidate{
		Title:       "<b>강아지</b> 교육 뉴스",
		Link:        "/news/42",
		Thumbnail:   "/images/42.jpg",
		Description: "설명 &amp; 본문",
		PublishedAt: &published,
	}, now)

	if article.Title != "강아지 교육 뉴스" {
		t.Errorf("Title = %q, want %q", article.Title, "강아지 교육 뉴스")
	}
	if article.Link != "https://www.koreadognews.co.kr/news/42" {
		t.Errorf("Link = %q", article.Link)
	}
	if article.Source != "한국애견신문" {
		t.Errorf("Source = %q", article.Source)
	}
	if article.Date != "2026-02-28T09:30:00Z" {
		t.Errorf("Date = %q, want RFC3339 of published time", article.Date)
	}
	if article.Thumbnail != "https://www.koreadognews.co.kr/images/42.jpg" {
		t.Errorf("Thumbnail = %q", article.Thumbnail)
	}
	if article.Description != "설명 & 본문" {
		t.Errorf("Description = %q", article.Description)
	}
}

func TestNormalize_MissingPublishedAtUsesNow(t *testing.T) {
	n := New("テストソース", "https://example.com")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	article := n.Normalize(model.Candidate{
		Title: "日付のない記事",
		Link:  "https://example.com/no-date",
	}, now)

	if article.Date != "2026-03-01T12:00:00Z" {
		t.Errorf("Date = %q, want now in RFC3339", article.Date)
	}

	// RFC3339としてパース可能であること
	if _, err := time.Parse(time.RFC3339, article.Date); err != nil {
		t.Errorf("Date %q is not RFC3339: %v", article.Date, err)
	}
}

func TestNormalize_TruncatesLongTitle(t *testing.T) {
	n := New("テストソース", "https://example.com")
	now := time.Now()

	article := n.Normalize(model.Candidate{
		Title: strings.Repeat("a", 300),
		Link:  "https://example.com/long",
	}, now)

	if len([]rune(article.Title)) != 200 {
		t.Errorf("Title length = %d, want 200", len([]rune(article.Title)))
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	n := New("テストソース", "https://example.com")
	now := time.Now()

	candidates := []model.Candidate{
		{Title: "記事1", Link: "https://example.com/1"},
		{Title: "記事2", Link: "https://example.com/2"},
		{Title: "記事3", Link: "https://example.com/3"},
	}

	articles := n.NormalizeAll(candidates, now)

	if len(articles) != 3 {
		t.Fatalf("len = %d, want 3", len(articles))
	}
	for i, want := range []string{"記事1", "記事2", "記事3"} {
		if articles[i].Title != want {
			t.Errorf("articles[%d].Title = %q, want %q", i, articles[i].Title, want)
		}
	}
}

func TestNormalizeAll_EmptyInput(t *testing.T) {
	n := New("テストソース", "https://example.com")

	articles := n.NormalizeAll(nil, time.Now())

	if len(articles) != 0 {
		t.Errorf("len = %d, want 0", len(articles))
	}
}
