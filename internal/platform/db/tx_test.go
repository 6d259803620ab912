package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/dbtest"
)

func TestRunInTxRollsBackOnError(t *testing.T) {
	conn := dbtest.NewTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (login_id, password_hash, created_at) VALUES ('x', 'h', '2024-01-01 00:00:00')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM members`))
	assert.Zero(t, n)
}

func TestRunInTxCommits(t *testing.T) {
	conn := dbtest.NewTestDB(t)
	ctx := context.Background()

	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (login_id, password_hash, created_at) VALUES ('y', 'h', '2024-01-01 00:00:00')`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM members`))
	assert.Equal(t, 1, n)
}
