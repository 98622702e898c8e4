package export

import (
	"bytes"
	"strings"

	"github.com/hitoshi/exportman/internal/model"
)

// utf8BOM はExcelがUTF-8として認識するためのバイトオーダーマーク。
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvHeaders はCSVの1行目に出力するフランス語ヘッダー。列順は固定。
var csvHeaders = []string{"Titre", "Prix", "Description", "Lieu", "Lien", "Date", "Image"}

// RenderCSV は正規化済みレコードをセミコロン区切りのCSVに変換する。
// 先頭にUTF-8 BOMを付与する（Excelでの文字化け対策）。
// フィールド内のセミコロンはカンマに、改行はスペースに置換する。
// 引用符によるエスケープは行わない（消費側の互換性を優先した非可逆変換）。
func RenderCSV(items []model.CanonicalItem) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString(strings.Join(csvHeaders, ";"))
	buf.WriteString("\r\n")

	for _, item := range items {
		row := []string{
			item.Title,
			item.Price,
			item.Description,
			item.Location,
			item.SourceURL,
			item.PostedAt,
			item.ImageURL,
		}
		for i, field := range row {
			row[i] = sanitizeCSVField(field)
		}
		buf.WriteString(strings.Join(row, ";"))
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// sanitizeCSVField はフィールド値から区切り文字と改行を除去する。
func sanitizeCSVField(s string) string {
	s = strings.ReplaceAll(s, ";", ",")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
