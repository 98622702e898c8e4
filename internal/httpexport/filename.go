package httpexport

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// filenameForbidden はファイル名から除去する文字の集合。
// WindowsとUNIX系の両方で安全でない文字を対象とする。
const filenameForbidden = "\\/:*?\"<>|\n\r\t"

// SanitizeFilename はユーザー由来のファイル名を添付ファイル名として安全な
// 形に変換する。禁止文字をハイフンに置換し、連続するハイフンを1つに
// まとめる。拡張子が指定のものと異なる場合は強制的に付け替える。
func SanitizeFilename(name, extension string) string {
	out := strings.Map(func(r rune) rune {
		if strings.ContainsRune(filenameForbidden, r) {
			return '-'
		}
		return r
	}, name)

	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	out = strings.Trim(out, "- ")
	if out == "" {
		out = "export"
	}

	suffix := "." + extension
	if !strings.HasSuffix(strings.ToLower(out), suffix) {
		// 既存の拡張子らしきもの（末尾ドット+短い英数字）だけを付け替える
		if i := strings.LastIndex(out, "."); i > 0 && i < len(out)-1 {
			if ext := out[i+1:]; len(ext) <= 5 && isAlnum(ext) {
				out = out[:i]
			}
		}
		out += suffix
	}

	return out
}

// isAlnum は文字列が英数字のみで構成されるかを返す。
func isAlnum(s string) bool {
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return s != ""
}

// asciiFallback はUTF-8ファイル名のASCII近似を返す。
// RFC 5987非対応の古いクライアント向けのfilename=パラメーター用。
// ダイアクリティカルマークを除去し、残る非ASCII文字はアンダースコアに置換する。
func asciiFallback(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r < 0x20 {
			return '_'
		}
		if r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, stripped)
}

// rfc5987Encode はRFC 5987のext-value用パーセントエンコーディングを行う。
// attr-char（英数字と一部の記号）以外のバイトはすべてエンコードする。
func rfc5987Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// isAttrChar はRFC 5987のattr-charに該当するかを返す。
func isAttrChar(c byte) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// ContentDisposition はRFC 6266準拠のContent-Dispositionヘッダー値を組み立てる。
// ASCII近似のfilename=と、UTF-8完全表現のfilename*=の両方を含める。
func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFallback(filename), rfc5987Encode(filename))
}
