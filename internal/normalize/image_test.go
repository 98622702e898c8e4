package normalize

import (
	"testing"

	"github.com/hitoshi/exportman/internal/model"
)

// TestResolveImage_NestedShapes は画像URLの候補パス優先順位をテストする。
func TestResolveImage_NestedShapes(t *testing.T) {
	tests := []struct {
		name string
		rec  model.RawRecord
		want string
	}{
		{
			name: "primary_listing_photo.listing_image.uriが最優先",
			rec: model.RawRecord{
				"primary_listing_photo": map[string]any{
					"listing_image": map[string]any{"uri": "https://cdn.example/a.jpg"},
					"image":         map[string]any{"uri": "https://cdn.example/ignored.jpg"},
				},
			},
			want: "https://cdn.example/a.jpg",
		},
		{
			name: "primary_listing_photo.image.uriは別バージョンのネスト形状",
			rec: model.RawRecord{
				"primary_listing_photo": map[string]any{
					"image": map[string]any{"uri": "https://cdn.example/b.jpg"},
				},
			},
			want: "https://cdn.example/b.jpg",
		},
		{
			name: "listing_photosの先頭エントリ",
			rec: model.RawRecord{
				"listing_photos": []any{
					map[string]any{"image": map[string]any{"uri": "https://cdn.example/c.jpg"}},
					map[string]any{"image": map[string]any{"uri": "https://cdn.example/ignored.jpg"}},
				},
			},
			want: "https://cdn.example/c.jpg",
		},
		{
			name: "フラットなimageUrl",
			rec:  model.RawRecord{"imageUrl": "https://cdn.example/d.jpg"},
			want: "https://cdn.example/d.jpg",
		},
		{
			name: "汎用imageの文字列形式",
			rec:  model.RawRecord{"image": "https://cdn.example/e.jpg"},
			want: "https://cdn.example/e.jpg",
		},
		{
			name: "汎用imageのオブジェクト形式",
			rec:  model.RawRecord{"image": map[string]any{"uri": "https://cdn.example/f.jpg"}},
			want: "https://cdn.example/f.jpg",
		},
		{
			name: "候補なしは空文字列",
			rec:  model.RawRecord{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveImage(tt.rec, ""); got != tt.want {
				t.Errorf("resolveImage = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCompleteURL_ProtocolRelative はプロトコル相対URLへのhttps:前置をテストする。
func TestCompleteURL_ProtocolRelative(t *testing.T) {
	got := completeURL("//cdn.example.com/x.jpg", "")
	if got != "https://cdn.example.com/x.jpg" {
		t.Errorf("completeURL = %q, want %q", got, "https://cdn.example.com/x.jpg")
	}
}

// TestCompleteURL_SiteRelative はサイト相対URLの掲載元URLに対する解決をテストする。
func TestCompleteURL_SiteRelative(t *testing.T) {
	got := completeURL("/img/x.jpg", "https://site.example/post/1")
	if got != "https://site.example/img/x.jpg" {
		t.Errorf("completeURL = %q, want %q", got, "https://site.example/img/x.jpg")
	}
}

// TestCompleteURL_SiteRelativeWithoutBase は解決不能時に入力をそのまま返すことをテストする。
func TestCompleteURL_SiteRelativeWithoutBase(t *testing.T) {
	if got := completeURL("/img/x.jpg", ""); got != "/img/x.jpg" {
		t.Errorf("completeURL = %q, want %q", got, "/img/x.jpg")
	}

	if got := completeURL("/img/x.jpg", "::not a url::"); got != "/img/x.jpg" {
		t.Errorf("completeURL = %q, want %q", got, "/img/x.jpg")
	}
}

// TestCompleteURL_AbsoluteUnchanged は絶対URLが変更されないことをテストする。
func TestCompleteURL_AbsoluteUnchanged(t *testing.T) {
	in := "https://cdn.example.com/x.jpg"
	if got := completeURL(in, "https://site.example"); got != in {
		t.Errorf("completeURL = %q, want %q", got, in)
	}
}

// TestResolveImage_CompletionUsesSourceURL は正規化全体で画像URL補完が効くことをテストする。
func TestResolveImage_CompletionUsesSourceURL(t *testing.T) {
	n := newTestNormalizer()
	rec := model.RawRecord{
		"imageUrl":   "/photos/1.jpg",
		"listingUrl": "https://site.example/post/1",
	}

	item := n.Normalize(rec)
	if item.ImageURL != "https://site.example/photos/1.jpg" {
		t.Errorf("ImageURL = %q, want %q", item.ImageURL, "https://site.example/photos/1.jpg")
	}
}
