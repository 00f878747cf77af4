package db

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

func openTest(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "canvas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Exec(context.Background(), `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL, n INTEGER)`)
	require.NoError(t, err)
	return s
}

func count(t *testing.T, s *SQLite) int64 {
	t.Helper()
	rows, err := s.Query(context.Background(), `SELECT COUNT(*) AS c FROM kv`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0].Int("c")
}

func TestQueryExec(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	n, err := s.Exec(ctx, `INSERT INTO kv (k, v, n) VALUES (?, ?, ?), (?, ?, ?)`, "a", "alpha", 1, "b", "beta", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := s.Query(ctx, `SELECT k, v, n FROM kv ORDER BY k`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].String("v"))
	assert.Equal(t, int64(1), rows[0].Int("n"))
	assert.Nil(t, rows[1]["n"])
	assert.Equal(t, "", rows[1].String("n"))

	rows, err = s.Query(ctx, `SELECT k FROM kv WHERE k = ?`, "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryError(t *testing.T) {
	s := openTest(t)
	_, err := s.Query(context.Background(), `SELECT * FROM nope`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorage))
}

func TestTransactionCommit(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`); err != nil {
			return err
		}
		rows, err := q.Query(ctx, `SELECT v FROM kv WHERE k = 'a'`)
		if err != nil {
			return err
		}
		assert.Len(t, rows, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, s))
}

func TestTransactionRollbackOnError(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	boom := stderrors.New("boom")

	err := s.Transaction(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), count(t, s))
}

func TestTransactionRollbackOnFailedStatement(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('a', '2')`)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, int64(0), count(t, s))
}

func TestTransactionRollbackOnPanic(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	assert.PanicsWithValue(t, "bad", func() {
		_ = s.Transaction(ctx, func(q Querier) error {
			_, _ = q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`)
			panic("bad")
		})
	})
	assert.Equal(t, int64(0), count(t, s))
}

func TestMemoryDatabase(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Exec(ctx, `CREATE TABLE t (x INTEGER)`)
	require.NoError(t, err)
	_, err = s.Exec(ctx, `INSERT INTO t VALUES (1)`)
	require.NoError(t, err)
	rows, err := s.Query(ctx, `SELECT x FROM t`)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
