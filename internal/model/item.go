// Package model はドメインモデルを定義する。
package model

// RawRecord は外部スクレイピングプロバイダーから取得した半構造化レコードを表す。
// スキーマは保証されず、任意のフィールドが欠落・改名・別キーへのネストをされうる。
// 信頼できない入力として正規化器に渡される。
type RawRecord map[string]any

// CanonicalItem はエクスポートレンダラーが消費する固定形状のレコード。
// 全フィールドは常に文字列として存在し、欠落したソースデータは
// 明示的なプレースホルダーに置き換えられる。レンダラーは行ごとの分岐なしで
// 固定幅のスプレッドシート行を生成できる。
type CanonicalItem struct {
	Title       string
	Price       string // 通貨を含む表示用整形済み文字列
	Description string
	ImageURL    string // 絶対URLまたは空文字列
	Location    string
	SourceURL   string
	PostedAt    string // 自由形式の日付文字列
}
