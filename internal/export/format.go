// Package export はエクスポートファイルの生成を提供する。
// 正規化済みレコードをCSVまたはXLSX形式にレンダリングする。
package export

import "strings"

// Format はエクスポートファイルの形式。
type Format string

const (
	// FormatCSV はセミコロン区切りのCSV形式。
	FormatCSV Format = "csv"
	// FormatXLSX はExcelワークブック形式。
	FormatXLSX Format = "xlsx"
)

// ParseFormat はクエリパラメーター値をFormatに変換する。
// 空文字列はCSVにフォールバックする。未知の値はfalseを返す。
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, true
	case "xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// ContentType はHTTPレスポンスのContent-Typeを返す。
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension はファイル名の拡張子（ドットなし）を返す。
func (f Format) Extension() string {
	if f == FormatXLSX {
		return "xlsx"
	}
	return "csv"
}
