// Package notify はエクスポート完了のWebhook通知を提供する。
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/exportman/internal/security"
)

// maxDrainBytes はWebhook応答ボディの読み捨て上限。
const maxDrainBytes = 1 << 20

// completedPayload はWebhookで送信するJSONボディ。
type completedPayload struct {
	Event      string `json:"event"`
	SessionID  string `json:"session_id"`
	Format     string `json:"format"`
	RowCount   int    `json:"row_count"`
	ExportedAt string `json:"exported_at"`
}

// Notifier はセッションに登録されたコールバックURLへ完了通知を送信する。
//
// コールバックURLは顧客が自由に指定できる値であるため、送信には
// SSRF防止機能付きのHTTPクライアントを使用し、内部ネットワークや
// メタデータIPへの到達を遮断する。通知はベストエフォートであり、
// 失敗はログに記録するのみでエクスポート結果には影響しない。
type Notifier struct {
	guard      security.CallbackGuard
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotifier はNotifierを生成する。
func NewNotifier(guard security.CallbackGuard, timeout time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		guard:      guard,
		httpClient: guard.NewSafeClient(timeout),
		logger:     logger,
	}
}

// SendCompleted はエクスポート完了通知をPOSTする。
// URLの静的検証に失敗した場合は送信を行わずエラーを返す。
func (n *Notifier) SendCompleted(ctx context.Context, callbackURL, sessionID, format string, rowCount int) error {
	if callbackURL == "" {
		return nil
	}

	// 送信前の静的検証。DNS再バインディングはクライアント側Dialerが防ぐ。
	if err := n.guard.ValidateURL(callbackURL); err != nil {
		n.logger.Warn("コールバックURLの検証に失敗しました",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("コールバックURLが不正です: %w", err)
	}

	payload := completedPayload{
		Event:      "export.completed",
		SessionID:  sessionID,
		Format:     format,
		RowCount:   rowCount,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("通知ペイロードのシリアライズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("Webhook送信に失敗しました",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()
	// 応答ボディは使わないが、コネクション再利用のため上限付きで読み捨てる
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode >= 300 {
		n.logger.Warn("Webhookがエラーステータスを返しました",
			slog.String("session_id", sessionID),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("webhookがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}
