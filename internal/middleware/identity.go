// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/exportman/internal/repository"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// NewIdentityMiddleware はHTTP Only Cookieからログインセッションを読み取り、
// 認証済みユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
//
// 認証は任意であり、Cookieがない・無効な場合もリクエストは匿名として通過する。
// エクスポートは署名付きトークンやトライアルでも許可されうるため、
// ここで401を返してはならない。所有者判定は後段のゲートが行う。
func NewIdentityMiddleware(finder repository.UserSessionFinder, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := finder.FindUserIDBySessionID(r.Context(), cookie.Value)
			if err != nil {
				// 参照失敗は匿名扱いで続行する
				logger.Error("ログインセッションの参照に失敗しました",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// ContextWithUserID は認証済みユーザーIDを格納したコンテキストを返す。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 未認証リクエストではエラーを返す。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
