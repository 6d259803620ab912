package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX は *sqlx.DB と *sqlx.Tx の共通部分
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Txを開始して fn を実行。fn が nil を返せば COMMIT、エラーなら ROLLBACK。
func RunInTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
