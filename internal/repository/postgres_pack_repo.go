package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/exportman/internal/model"
)

// PostgresPackRepo はPostgreSQLを使用したパックカタログリポジトリ。
// packsテーブルはマイグレーションで既定ティアがシードされる。
type PostgresPackRepo struct {
	db *sql.DB
}

// NewPostgresPackRepo はPostgresPackRepoを生成する。
func NewPostgresPackRepo(db *sql.DB) *PostgresPackRepo {
	return &PostgresPackRepo{db: db}
}

// FindByID は指定IDのパックを取得する。見つからない場合はnilを返す。
// 不明IDのデフォルトティアへのフォールバックは呼び出し側の責務。
func (r *PostgresPackRepo) FindByID(ctx context.Context, id string) (*model.Pack, error) {
	pack := &model.Pack{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, row_limit, price_label
		 FROM packs
		 WHERE id = $1`,
		id,
	).Scan(&pack.ID, &pack.Name, &pack.RowLimit, &pack.PriceLabel)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pack: %w", err)
	}

	return pack, nil
}

// compile-time interface check
var _ PackRepository = (*PostgresPackRepo)(nil)
