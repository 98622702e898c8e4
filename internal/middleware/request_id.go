package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDContextKey はリクエストコンテキストにリクエストIDを格納するためのキー。
var requestIDContextKey = contextKey("request_id")

// requestIDHeader はリクエストIDを返すレスポンスヘッダー名。
const requestIDHeader = "X-Request-ID"

// NewRequestIDMiddleware は各リクエストに相関IDを割り当てるミドルウェアを返す。
// クライアントが有効なX-Request-IDを送ってきた場合はそれを引き継ぎ、
// なければUUIDを発行する。IDはレスポンスヘッダーとエラーボディに含まれ、
// サポート問い合わせ時のログ突合に使用される。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はリクエストコンテキストから相関IDを取得する。
// ミドルウェア未通過の場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
