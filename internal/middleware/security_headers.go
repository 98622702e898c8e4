package middleware

import "net/http"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
// このAPIの応答はJSONかファイル添付のどちらかであり、ブラウザに
// コンテンツ種別を推測させたりフレーム内に埋め込ませたりする理由がない。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			// 旧IE向け: 添付ファイルをその場で開かせない
			h.Set("X-Download-Options", "noopen")
			next.ServeHTTP(w, r)
		})
	}
}
