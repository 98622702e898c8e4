package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hitoshi/exportman/internal/model"
)

// sheetName はワークブック内の唯一のシート名。
const sheetName = "Annonces"

// xlsxColumnWidths は各列の表示幅。csvHeaders と同じ列順。
var xlsxColumnWidths = []float64{40, 18, 60, 20, 45, 16, 45}

// RenderXLSX は正規化済みレコードをExcelワークブックに変換する。
// 1行目は太字・背景色付きのヘッダー行。列幅は固定値を設定する。
func RenderXLSX(items []model.CanonicalItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("シートの作成に失敗しました: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	now := time.Now().UTC().Format(time.RFC3339)
	f.SetDocProps(&excelize.DocProperties{
		Creator:  "exportman",
		Title:    "Export des annonces",
		Created:  now,
		Modified: now,
	})

	// ヘッダースタイル
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5B7C"}},
	})
	if err != nil {
		return nil, fmt.Errorf("ヘッダースタイルの作成に失敗しました: %w", err)
	}

	for i, header := range csvHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("セル名の変換に失敗しました: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("ヘッダーの書き込みに失敗しました: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, xlsxColumnWidths[i]); err != nil {
			return nil, fmt.Errorf("列幅の設定に失敗しました: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(csvHeaders))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("ヘッダースタイルの適用に失敗しました: %w", err)
	}

	for rowIdx, item := range items {
		row := []any{
			item.Title,
			item.Price,
			item.Description,
			item.Location,
			item.SourceURL,
			item.PostedAt,
			item.ImageURL,
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return nil, fmt.Errorf("セル名の変換に失敗しました: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("データ行の書き込みに失敗しました: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ワークブックの書き出しに失敗しました: %w", err)
	}

	return buf.Bytes(), nil
}

// Render は指定形式でレコードをレンダリングする。
func Render(format Format, items []model.CanonicalItem) ([]byte, error) {
	if format == FormatXLSX {
		return RenderXLSX(items)
	}
	return RenderCSV(items), nil
}

// Truncate はパックの行数上限を超えるレコードを切り捨てる。
// limit が0以下の場合は無制限として扱う。
func Truncate(items []model.CanonicalItem, limit int) []model.CanonicalItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
