package httpexport

import (
	"net/url"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		extension string
		want      string
	}{
		{"forbidden characters", `Rapport *Q1*.xlsx`, "xlsx", "Rapport -Q1-.xlsx"},
		{"missing extension", "export", "xlsx", "export.xlsx"},
		{"wrong extension replaced", "annonces.csv", "xlsx", "annonces.xlsx"},
		{"path separators", `..\..\secret/file`, "csv", "..-..-secret-file.csv"},
		{"newlines and tabs", "rapport\nfinal\tv2", "csv", "rapport-final-v2.csv"},
		{"collapses repeats", "a///b", "csv", "a-b.csv"},
		{"empty falls back", "", "csv", "export.csv"},
		{"only forbidden falls back", `***`, "csv", "export.csv"},
		{"case-insensitive extension kept", "Rapport.XLSX", "xlsx", "Rapport.XLSX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input, tt.extension); got != tt.want {
				t.Errorf("SanitizeFilename(%q, %q) = %q, want %q", tt.input, tt.extension, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_NoAsterisksAndExtensionPreserved(t *testing.T) {
	got := SanitizeFilename(`Rapport *Q1*.xlsx`, "xlsx")
	if strings.ContainsAny(got, `*\/:?"<>|`) {
		t.Errorf("sanitized name still contains forbidden characters: %q", got)
	}
	if !strings.HasSuffix(got, ".xlsx") {
		t.Errorf("sanitized name lost its extension: %q", got)
	}
}

func TestRFC5987Encode_RoundTrip(t *testing.T) {
	inputs := []string{
		"annonces-tana.csv",
		"rapport énergie.xlsx",
		"Fichier d'été — août.csv",
		"アノンス.xlsx",
	}
	for _, in := range inputs {
		encoded := rfc5987Encode(in)
		// attr-char以外はすべて%XXでエンコードされる
		for _, c := range []byte(encoded) {
			if c != '%' && !isAttrChar(c) {
				t.Errorf("rfc5987Encode(%q) contains unencoded byte %q", in, string(c))
			}
		}
		decoded, err := url.PathUnescape(encoded)
		if err != nil {
			t.Fatalf("failed to decode %q: %v", encoded, err)
		}
		if decoded != in {
			t.Errorf("round trip of %q gave %q", in, decoded)
		}
	}
}

func TestASCIIFallback(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"annonces.csv", "annonces.csv"},
		{"rapport énergie.xlsx", "rapport energie.xlsx"},
		{"Fañara-ña.csv", "Fanara-na.csv"},
		{"アノンス.xlsx", "____.xlsx"},
	}
	for _, tt := range tests {
		if got := asciiFallback(tt.input); got != tt.want {
			t.Errorf("asciiFallback(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	header := ContentDisposition("rapport énergie.xlsx")

	if !strings.HasPrefix(header, "attachment; ") {
		t.Errorf("expected attachment disposition: %s", header)
	}
	if !strings.Contains(header, `filename="rapport energie.xlsx"`) {
		t.Errorf("expected ASCII fallback filename: %s", header)
	}
	if !strings.Contains(header, "filename*=UTF-8''rapport%20%C3%A9nergie.xlsx") {
		t.Errorf("expected RFC 5987 encoded filename: %s", header)
	}
}
