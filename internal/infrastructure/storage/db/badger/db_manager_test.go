package dbbadger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/dbtest"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

func TestRepoManager(t *testing.T) {
	dbtest.TestRepoManager(t, func() emulator.RepoManager {
		repo, err := dbbadger.NewRepoManager("", nil)
		require.NoError(t, err)
		return repo
	})
}

func TestRepoManagerPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := dbbadger.NewRepoManager(dir, nil)
	require.NoError(t, err)

	utxo := ledger.Utxo{
		OutPoint: ledger.NewOutPoint(
			"0b0e5c6bd1f9f3a8a1e2f6b5e3cb0cb4e07f2b2f4e3c55ed1c1a7d0e9f8a7b6c", 1,
		),
		Output: ledger.Output{Address: "addr", Value: ledger.NewValue(1000)},
	}
	_, err = repo.UtxoRepository().AddUtxos(ctx, []ledger.Utxo{utxo})
	require.NoError(t, err)
	repo.Close()

	repo, err = dbbadger.NewRepoManager(dir, nil)
	require.NoError(t, err)
	defer repo.Close()

	stored, err := repo.UtxoRepository().GetUtxo(ctx, utxo.OutPoint)
	require.NoError(t, err)
	require.Equal(t, utxo, *stored)
}
