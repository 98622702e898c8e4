package middleware

import "net/http"

// NewCORSMiddleware は許可リスト方式のCORSミドルウェアを返す。
// credentials送信と共存するため、ワイルドカード(*)は使用しない。
//
// リクエストのOriginが許可リストに含まれる場合はそのオリジンを、
// 含まれない・Originヘッダーがない場合は許可リストの先頭エントリを
// Access-Control-Allow-Originに返す。未知のオリジンからのブラウザーは
// 結果的にブロックされ、サーバーは許可済みオリジン以外を反射しない。
//
// ダウンロード用にContent-DispositionとContent-Lengthをスクリプトに公開する。
// OPTIONSプリフライトリクエストには204で応答する。
func NewCORSMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; !ok {
				origin = allowedOrigins[0]
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, Content-Length, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			// オリジンごとに応答が変わるためキャッシュ分離が必要
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
