package normalize

import (
	"net/url"
	"strings"

	"github.com/hitoshi/exportman/internal/model"
)

// resolveImage は画像URLを解決する。
// プレースホルダーは空文字列であり、レンダラーは空文字列を「画像なし」として扱う。
// 壊れたリンクを出力するよりも欠落の方が望ましい。
func resolveImage(rec model.RawRecord, sourceURL string) string {
	raw := resolve(rec, imageExtractors, "")
	if raw == "" {
		return ""
	}
	return completeURL(raw, sourceURL)
}

// imageExtractors は画像URLの候補パス。プロバイダーのバージョンにより
// ネスト形状が複数観測されているため、順に試す。
var imageExtractors = []extractor{
	// primary_listing_photo.listing_image.uri
	func(r model.RawRecord) string {
		return stringValue(sub(sub(r, "primary_listing_photo"), "listing_image")["uri"])
	},
	// primary_listing_photo.image.uri（別バージョンのネスト形状）
	func(r model.RawRecord) string {
		return stringValue(sub(sub(r, "primary_listing_photo"), "image")["uri"])
	},
	// listing_photos[0].image.uri
	func(r model.RawRecord) string {
		photos, ok := r["listing_photos"].([]any)
		if !ok || len(photos) == 0 {
			return ""
		}
		first, ok := photos[0].(map[string]any)
		if !ok {
			return ""
		}
		return stringValue(sub(model.RawRecord(first), "image")["uri"])
	},
	// フラットなimageUrl
	func(r model.RawRecord) string { return str(r, "imageUrl") },
	// 汎用image: 文字列または{uri}オブジェクト
	func(r model.RawRecord) string {
		switch v := r["image"].(type) {
		case string:
			return strings.TrimSpace(v)
		case map[string]any:
			return stringValue(v["uri"])
		}
		return ""
	},
}

// completeURL はプロトコルを欠くURLをベストエフォートで補完する。
//   - "//"始まり: https:を前置する
//   - "/"始まり（サイト相対）: sourceURLのスキーム+ホストに対して解決する
//
// 解決できない場合はエラーにせず入力をそのまま返す。
func completeURL(raw, sourceURL string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if strings.HasPrefix(raw, "/") {
		base, err := url.Parse(sourceURL)
		if err != nil || base.Scheme == "" || base.Host == "" {
			return raw
		}
		return base.Scheme + "://" + base.Host + raw
	}
	return raw
}
