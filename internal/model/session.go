// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// SessionStatus は収集ジョブの進行状態を表す。
type SessionStatus string

const (
	// SessionStatusPending はジョブ開始待ちの状態。
	SessionStatusPending SessionStatus = "pending"
	// SessionStatusRunning はジョブ実行中の状態。
	SessionStatusRunning SessionStatus = "running"
	// SessionStatusFinished はジョブが正常完了した状態。この状態でのみエクスポートが許可される。
	SessionStatusFinished SessionStatus = "finished"
	// SessionStatusFailed はジョブが失敗した状態。
	SessionStatusFailed SessionStatus = "failed"
)

// TempSessionPrefix は一時セッションIDの識別プレフィックス。
// このプレフィックスを持つセッションはデモ・無料フロー用で、永続化なしで常に許可される。
const TempSessionPrefix = "temp-"

// ScrapeSession は1件の収集ジョブとその課金状態を表す。
type ScrapeSession struct {
	ID            string
	Status        SessionStatus
	IsPaid        bool
	IsTrial       bool
	PackID        string
	DatasetID     string
	OwnerUserID   string
	DownloadToken string // レガシーの単回利用トークン。署名付きトークンに置き換え済みの互換フィールド。
	CallbackURL   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTemporaryID はセッションIDが一時セッション形式かを判定する。
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempSessionPrefix)
}

// NewTemporarySession は一時セッションのプレースホルダーを生成する。
// 永続化されず、常に支払い済み・完了済みとして扱われる。
func NewTemporarySession(id string) *ScrapeSession {
	now := time.Now()
	return &ScrapeSession{
		ID:        id,
		Status:    SessionStatusFinished,
		IsPaid:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
