package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresUserSessionRepo は認証サブシステムが管理するログインセッションの参照実装。
// このサブシステムはuser_sessionsテーブルを読み取り専用で参照する。
type PostgresUserSessionRepo struct {
	db *sql.DB
}

// NewPostgresUserSessionRepo はPostgresUserSessionRepoを生成する。
func NewPostgresUserSessionRepo(db *sql.DB) *PostgresUserSessionRepo {
	return &PostgresUserSessionRepo{db: db}
}

// FindUserIDBySessionID は有効なログインセッションのユーザーIDを返す。
// セッションが存在しないか期限切れの場合は空文字列を返す。
func (r *PostgresUserSessionRepo) FindUserIDBySessionID(ctx context.Context, sessionID string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id
		 FROM user_sessions
		 WHERE id = $1 AND expires_at > now()`,
		sessionID,
	).Scan(&userID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user session: %w", err)
	}

	return userID, nil
}

// compile-time interface check
var _ UserSessionFinder = (*PostgresUserSessionRepo)(nil)
