// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, billing, validation, export, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodePaymentRequired = "PAYMENT_REQUIRED"
	ErrCodeNotOwner        = "NOT_OWNER"
	ErrCodeExportTooEarly  = "EXPORT_TOO_EARLY"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewMissingSessionIDError はセッションID未指定エラーを生成する。
func NewMissingSessionIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "セッションIDが指定されていません。",
		Category: "validation",
		Action:   "エクスポート対象のセッションIDを指定してください。",
	}
}

// NewInvalidFormatError は未対応のエクスポート形式エラーを生成する。
func NewInvalidFormatError(format string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFormat,
		Message:  fmt.Sprintf("未対応のエクスポート形式です: %s", format),
		Category: "validation",
		Action:   "形式には csv または xlsx を指定してください。",
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
func NewSessionNotFoundError(sessionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定されたセッションが見つかりません: %s", sessionID),
		Category: "export",
		Action:   "セッションIDを確認してください。",
	}
}

// NewPaymentRequiredError は支払い未確認エラーを生成する。
func NewPaymentRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodePaymentRequired,
		Message:  "このセッションの支払いが確認できません。",
		Category: "billing",
		Action:   "支払いを完了するか、有効なダウンロードリンクを使用してください。",
	}
}

// NewNotOwnerError は所有者不一致エラーを生成する。
func NewNotOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotOwner,
		Message:  "このセッションをダウンロードする権限がありません。",
		Category: "auth",
		Action:   "セッションを作成したアカウントでログインし直してください。",
	}
}

// NewExportTooEarlyError は収集未完了エラーを生成する。
func NewExportTooEarlyError(status SessionStatus) *APIError {
	return &APIError{
		Code:     ErrCodeExportTooEarly,
		Message:  fmt.Sprintf("データ収集がまだ完了していません（現在の状態: %s）。", status),
		Category: "export",
		Action:   "収集の完了後に再度ダウンロードしてください。",
	}
}
