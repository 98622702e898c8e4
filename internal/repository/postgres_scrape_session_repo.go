package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/exportman/internal/model"
)

// PostgresScrapeSessionRepo はPostgreSQLを使用したスクレイプセッションリポジトリ。
type PostgresScrapeSessionRepo struct {
	db *sql.DB
}

// NewPostgresScrapeSessionRepo はPostgresScrapeSessionRepoを生成する。
func NewPostgresScrapeSessionRepo(db *sql.DB) *PostgresScrapeSessionRepo {
	return &PostgresScrapeSessionRepo{db: db}
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresScrapeSessionRepo) FindByID(ctx context.Context, id string) (*model.ScrapeSession, error) {
	session := &model.ScrapeSession{}
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, status, is_paid, is_trial, pack_id, dataset_id,
		        owner_user_id, download_token, callback_url, created_at, updated_at
		 FROM scrape_sessions
		 WHERE id = $1`,
		id,
	).Scan(
		&session.ID, &status, &session.IsPaid, &session.IsTrial,
		&session.PackID, &session.DatasetID, &session.OwnerUserID,
		&session.DownloadToken, &session.CallbackURL,
		&session.CreatedAt, &session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scrape session: %w", err)
	}

	session.Status = model.SessionStatus(status)
	return session, nil
}

// Create はセッションを作成する。
func (r *PostgresScrapeSessionRepo) Create(ctx context.Context, session *model.ScrapeSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scrape_sessions
		   (id, status, is_paid, is_trial, pack_id, dataset_id,
		    owner_user_id, download_token, callback_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		session.ID, string(session.Status), session.IsPaid, session.IsTrial,
		session.PackID, session.DatasetID, session.OwnerUserID,
		session.DownloadToken, session.CallbackURL,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scrape session: %w", err)
	}
	return nil
}

// UpdatePartial はセッションを部分更新する。
// patchのnilでないフィールドのみSET句に含め、updated_atを常に更新する。
func (r *PostgresScrapeSessionRepo) UpdatePartial(ctx context.Context, id string, patch SessionPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	query, args := buildSessionPatchQuery(id, patch)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update scrape session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scrape session not found: %s", id)
	}
	return nil
}

// buildSessionPatchQuery は部分更新のUPDATE文と引数リストを構築する。
func buildSessionPatchQuery(id string, patch SessionPatch) (string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.IsPaid != nil {
		add("is_paid", *patch.IsPaid)
	}
	if patch.IsTrial != nil {
		add("is_trial", *patch.IsTrial)
	}
	if patch.DatasetID != nil {
		add("dataset_id", *patch.DatasetID)
	}
	if patch.DownloadToken != nil {
		add("download_token", *patch.DownloadToken)
	}

	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE scrape_sessions SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)
	return query, args
}

// CompareAndClearToken はレガシーダウンロードトークンを原子的に消去する。
// WHERE句でトークン一致まで含めることで、check-then-clearの競合を
// データベース側で排除する。
func (r *PostgresScrapeSessionRepo) CompareAndClearToken(ctx context.Context, id, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE scrape_sessions
		 SET download_token = '', updated_at = now()
		 WHERE id = $1 AND download_token = $2`,
		id, token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to clear download token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ConsumeTrial はトライアルフラグを単発で消費する。
func (r *PostgresScrapeSessionRepo) ConsumeTrial(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scrape_sessions
		 SET is_trial = FALSE, updated_at = now()
		 WHERE id = $1 AND is_trial = TRUE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to consume trial: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ScrapeSessionRepository = (*PostgresScrapeSessionRepo)(nil)
