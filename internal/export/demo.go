package export

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hitoshi/exportman/internal/model"
	"github.com/hitoshi/exportman/internal/normalize"
)

// demoCities はデモデータで使用する都市の固定リスト。
var demoCities = []string{
	"Antananarivo",
	"Antsirabe",
	"Toamasina",
	"Fianarantsoa",
	"Mahajanga",
}

// DemoItems はパックの行数分のプレースホルダーレコードを合成する。
// プロバイダー障害や正規化失敗時のフォールバックとして使用され、
// アクセス許可済みの呼び出し元にエラーの代わりに返される。
// 都市と価格はランダムに選択する。
func DemoItems(pack *model.Pack) []model.CanonicalItem {
	if pack == nil {
		pack = model.DefaultPack()
	}
	count := pack.RowLimit
	if count <= 0 {
		count = model.DefaultPack().RowLimit
	}

	now := time.Now().Format("2006-01-02")
	items := make([]model.CanonicalItem, count)
	for i := range items {
		city := demoCities[rand.Intn(len(demoCities))]
		// 100 000〜5 000 000 MGA の範囲で1万アリアリ単位
		price := (rand.Intn(491) + 10) * 10000
		items[i] = model.CanonicalItem{
			Title:       fmt.Sprintf("Annonce exemple %d", i+1),
			Price:       formatDemoPrice(price),
			Description: normalize.PlaceholderDescription,
			ImageURL:    "https://placehold.co/600x400",
			Location:    city,
			SourceURL:   "https://example.com/annonce",
			PostedAt:    now,
		}
	}

	return items
}

// formatDemoPrice は整数価格を3桁区切りの「X MGA」表記にする。
func formatDemoPrice(v int) string {
	s := fmt.Sprintf("%d", v)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return string(out) + " MGA"
}
