package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/exportman/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリ・対処方法に加え、サポート問い合わせ用の相関IDを含む。
type ErrorResponseBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	Action    string `json:"action"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:      apiErr.Code,
		Message:   apiErr.Message,
		Category:  apiErr.Category,
		Action:    apiErr.Action,
		RequestID: RequestIDFromContext(ctx),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージと相関IDを返す。
func WriteInternalServerError(ctx context.Context, w http.ResponseWriter) {
	WriteErrorResponse(ctx, w, http.StatusInternalServerError, &model.APIError{
		Code:     model.ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
