package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"bid-ledger/internal/biddingerrors"

	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *GormRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo, err := NewGormRepo(db)
	require.NoError(t, err)
	return repo
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase("mysql", "user:pass@/db")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported driver")
}

func TestGormRepo_ClosedDatabase(t *testing.T) {
	repo := newSQLiteRepo(t)
	sqlDB, err := repo.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.ListByItem(context.Background(), "item1")
	require.ErrorIs(t, err, biddingerrors.ErrUnavailable)

	_, err = repo.HighestBid(context.Background(), "item1")
	require.ErrorIs(t, err, biddingerrors.ErrUnavailable)
}
