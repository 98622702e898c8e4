package normalize

import (
	"strconv"
	"strings"

	"github.com/hitoshi/exportman/internal/model"
)

// 表示を特別扱いする主要通貨。それ以外は「<金額> <コード>」の汎用形式になる。
const (
	currencyMGA = "MGA"
	currencyUSD = "USD"
	currencyEUR = "EUR"
)

// resolvePrice は価格フィールドを解決する。
// 構造化された価格オブジェクトを優先し、緩いキーへのフォールバック、
// 妥当性検証を経て表示用文字列を返す。
func (n *Normalizer) resolvePrice(rec model.RawRecord) string {
	// 1. 構造化価格オブジェクト: {amount, currency}
	if lp := sub(rec, "listing_price"); lp != nil {
		amountStr := stringOrNumber(lp["amount"])
		currency := strings.ToUpper(stringValue(lp["currency"]))
		if amountStr != "" {
			if amount, err := strconv.ParseFloat(cleanNumeric(amountStr), 64); err == nil && amount > 0 {
				return n.formatPrice(amount, currency)
			}
		}
	}

	// 2. 緩いフォールバック: price → prix
	for _, key := range []string{"price", "prix"} {
		switch v := rec[key].(type) {
		case float64:
			if v > 0 {
				// 裸の数値はデフォルト通貨として整形する
				return n.formatPrice(v, currencyMGA)
			}
		case string:
			t := strings.TrimSpace(v)
			if t == "" {
				continue
			}
			if amount, err := strconv.ParseFloat(cleanNumeric(t), 64); err == nil {
				if amount > 0 {
					return n.formatPrice(amount, currencyMGA)
				}
				continue
			}
			// 数値として解釈できない文字列は整形済みとみなしそのまま使う
			return t
		}
	}

	return PlaceholderPrice
}

// formatPrice は金額を通貨付きの表示用文字列に整形する。
// MGA建てで妥当性下限を下回る金額は、上流の単位誤報告とみなし
// 「価格応談」プレースホルダーに置き換える。
func (n *Normalizer) formatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = currencyMGA
	}
	if currency == currencyMGA && amount < n.cfg.PriceMinPlausibleMGA {
		return PlaceholderPriceOnRequest
	}

	grouped := groupThousands(amount)
	switch currency {
	case currencyMGA:
		return grouped + " MGA"
	case currencyUSD:
		return "$" + grouped
	case currencyEUR:
		return grouped + " €"
	default:
		return grouped + " " + currency
	}
}

// groupThousands は金額の整数部を3桁ごとに空白区切りで整形する。
// 出力契約は通常のU+0020空白であり、ロケールライブラリが生成する
// 狭い非改行空白とは異なるためここで直接整形する。
func groupThousands(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 0, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// cleanNumeric は数値文字列から桁区切り（空白・カンマ）を除去する。
func cleanNumeric(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}
