// Package normalize は外部プロバイダーの生レコードを正規化アイテムへ変換する。
//
// 上流プロバイダーのスキーマはバージョン間・集約元データソース間でドリフトするため、
// 各フィールドの解決を「候補パスの順序付きリストを先頭から試し、最初に使える値を採用する」
// 方式に統一する。この不安定さを本パッケージに局所化することで、
// 下流は常に固定形状のCanonicalItemに対して動作できる。
package normalize

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/exportman/internal/model"
)

// 各フィールドのプレースホルダー。欠落は常に明示的な値になり、nullや欠損キーにはならない。
const (
	PlaceholderTitle          = "No Title"
	PlaceholderPrice          = "N/A"
	PlaceholderPriceOnRequest = "Prix sur demande"
	PlaceholderDescription    = "Description non disponible"
	PlaceholderLocation       = "Unknown"
)

// Config は正規化器の設定。
type Config struct {
	// PriceMinPlausibleMGA はMGA建て価格の妥当性下限。
	// これ未満の価格は上流の単位誤報告とみなし「価格応談」に置き換える。
	PriceMinPlausibleMGA float64
}

// Normalizer は生レコードの正規化器。
// Normalizeは全域関数であり、決して失敗せず、入出力以外の副作用を持たない。
type Normalizer struct {
	cfg       Config
	sanitizer *bluemonday.Policy
}

// New はNormalizerを生成する。
func New(cfg Config) *Normalizer {
	if cfg.PriceMinPlausibleMGA <= 0 {
		cfg.PriceMinPlausibleMGA = 1000
	}
	return &Normalizer{
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Normalize は任意の生レコードをCanonicalItemへ変換する。
// 解決できないフィールドはプレースホルダーに縮退し、欠損にはならない。
func (n *Normalizer) Normalize(rec model.RawRecord) model.CanonicalItem {
	sourceURL := resolveSourceURL(rec)
	return model.CanonicalItem{
		Title:       resolveTitle(rec),
		Price:       n.resolvePrice(rec),
		Description: n.resolveDescription(rec),
		ImageURL:    resolveImage(rec, sourceURL),
		Location:    resolveLocation(rec),
		SourceURL:   sourceURL,
		PostedAt:    resolvePostedAt(rec),
	}
}

// extractor は生レコードから候補値を1つ取り出す関数。
type extractor func(model.RawRecord) string

// resolve は抽出器を順に試し、最初に得られた非空値を返す。
// いずれも空の場合はplaceholderを返す。
func resolve(rec model.RawRecord, extractors []extractor, placeholder string) string {
	for _, ex := range extractors {
		if v := ex(rec); v != "" {
			return v
		}
	}
	return placeholder
}

// --- タイトル ---

var titleExtractors = []extractor{
	func(r model.RawRecord) string { return str(r, "marketplace_listing_title") },
	func(r model.RawRecord) string { return str(r, "custom_title") },
	func(r model.RawRecord) string { return str(r, "title") },
	func(r model.RawRecord) string { return str(r, "name") },
}

func resolveTitle(rec model.RawRecord) string {
	return resolve(rec, titleExtractors, PlaceholderTitle)
}

// --- 説明 ---

// noDescriptionSentinels はプロバイダーが「説明なし」を表すのに使う既知の値。
var noDescriptionSentinels = []string{
	"no description",
	"no description available",
}

func (n *Normalizer) resolveDescription(rec model.RawRecord) string {
	var raw string
	switch v := rec["redacted_description"].(type) {
	case map[string]any:
		raw = stringValue(v["text"])
	case string:
		raw = strings.TrimSpace(v)
	}
	if raw == "" {
		raw = str(rec, "description")
	}

	clean := n.sanitizeText(raw)
	if clean == "" || isNoDescriptionSentinel(clean) {
		return PlaceholderDescription
	}
	return clean
}

// sanitizeText はHTML断片からタグを除去し、空白を正規化したプレーンテキストを返す。
// プロバイダーのレコードにはHTMLがそのまま入ることがあり、
// スプレッドシートのセルにタグを持ち込まないためにここで除去する。
func (n *Normalizer) sanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	s := n.sanitizer.Sanitize(raw)
	// bluemondayは実体参照をエスケープして返すため、プレーンテキストに戻す
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func isNoDescriptionSentinel(s string) bool {
	lower := strings.ToLower(s)
	for _, sentinel := range noDescriptionSentinels {
		if lower == sentinel {
			return true
		}
	}
	return false
}

// --- 所在地 ---

func resolveLocation(rec model.RawRecord) string {
	switch v := rec["location"].(type) {
	case string:
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	case map[string]any:
		loc := model.RawRecord(v)
		if city := stringValue(sub(loc, "reverse_geocode_detailed")["city"]); city != "" {
			return city
		}
		if city := stringValue(sub(loc, "reverse_geocode")["city"]); city != "" {
			return city
		}
		// city_pageの表示名は「市名, 地域名」形式のため先頭要素を市名とみなす
		display := stringValue(sub(sub(loc, "reverse_geocode"), "city_page")["display_name"])
		if display == "" {
			display = stringValue(sub(loc, "city_page")["display_name"])
		}
		if display != "" {
			return strings.TrimSpace(strings.SplitN(display, ",", 2)[0])
		}
	}

	if lieu := str(rec, "lieu"); lieu != "" {
		return lieu
	}
	return PlaceholderLocation
}

// --- URL・投稿日時 ---

var sourceURLExtractors = []extractor{
	func(r model.RawRecord) string { return str(r, "listingUrl") },
	func(r model.RawRecord) string { return str(r, "url") },
	func(r model.RawRecord) string { return str(r, "link") },
	func(r model.RawRecord) string { return str(r, "href") },
}

func resolveSourceURL(rec model.RawRecord) string {
	return resolve(rec, sourceURLExtractors, "")
}

var postedAtExtractors = []extractor{
	func(r model.RawRecord) string { return stringOrNumber(r["postedAt"]) },
	func(r model.RawRecord) string { return stringOrNumber(r["date"]) },
}

func resolvePostedAt(rec model.RawRecord) string {
	return resolve(rec, postedAtExtractors, "")
}

// --- 値アクセスヘルパー ---

// str はレコードの文字列フィールドをトリムして返す。文字列でなければ空文字列。
func str(rec model.RawRecord, key string) string {
	return stringValue(rec[key])
}

// stringValue は任意の値を文字列として解釈する。文字列以外は空文字列になる。
func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringOrNumber は文字列または数値を表示用文字列として返す。
// JSONデコード後の数値はfloat64で渡ってくる。
func stringOrNumber(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// sub はネストされたオブジェクトフィールドを返す。
// 存在しないかオブジェクトでない場合はnilを返す（nilマップの読み出しは安全）。
func sub(rec model.RawRecord, key string) model.RawRecord {
	if rec == nil {
		return nil
	}
	if m, ok := rec[key].(map[string]any); ok {
		return model.RawRecord(m)
	}
	return nil
}
