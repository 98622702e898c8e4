// Package model はドメインモデルを定義する。
package model

// Pack はエクスポートの行数上限と表示情報を持つ商用ティアを表す。
type Pack struct {
	ID         string
	Name       string
	RowLimit   int
	PriceLabel string
}

// DefaultPackID は不明なパックIDのフォールバック先。
const DefaultPackID = "basic"

// DefaultPack はデフォルトティアを返す。
// パックカタログの参照に失敗した場合もエクスポート自体は失敗させない。
func DefaultPack() *Pack {
	return &Pack{
		ID:         DefaultPackID,
		Name:       "Basic",
		RowLimit:   50,
		PriceLabel: "10 000 MGA",
	}
}
