// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/exportman/internal/model"
)

// SessionPatch はスクレイプセッションの部分更新フィールド集合。
// nilのフィールドは変更されない。
type SessionPatch struct {
	Status        *model.SessionStatus
	IsPaid        *bool
	IsTrial       *bool
	DatasetID     *string
	DownloadToken *string
}

// IsEmpty は更新対象フィールドが1つもないことを判定する。
func (p SessionPatch) IsEmpty() bool {
	return p.Status == nil && p.IsPaid == nil && p.IsTrial == nil &&
		p.DatasetID == nil && p.DownloadToken == nil
}

// ScrapeSessionRepository はスクレイプセッションの永続化インターフェース。
type ScrapeSessionRepository interface {
	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ScrapeSession, error)

	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.ScrapeSession) error

	// UpdatePartial はセッションを部分更新する。エンティティ全体は要求しない。
	UpdatePartial(ctx context.Context, id string, patch SessionPatch) error

	// CompareAndClearToken はレガシーダウンロードトークンを原子的に消去する。
	// 保存されているトークンがtokenと一致した場合のみ消去し、trueを返す。
	// 並行リクエストによる単回利用トークンの複数回消費を防ぐ。
	CompareAndClearToken(ctx context.Context, id, token string) (bool, error)

	// ConsumeTrial はトライアルフラグを単発で消費する。
	// is_trialが立っている場合のみ消去する（冪等）。
	ConsumeTrial(ctx context.Context, id string) error
}

// PackRepository はパックカタログの参照インターフェース。
type PackRepository interface {
	// FindByID は指定IDのパックを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Pack, error)
}

// UserSessionFinder は認証サブシステムのログインセッション参照インターフェース。
// エクスポートゲートはこの狭い契約を通じてのみリクエスト元ユーザーを知る。
type UserSessionFinder interface {
	// FindUserIDBySessionID は有効なログインセッションのユーザーIDを返す。
	// セッションが存在しないか期限切れの場合は空文字列を返す。
	FindUserIDBySessionID(ctx context.Context, sessionID string) (string, error)
}
