// Package dbtest holds the test suite every emulator.RepoManager
// implementation must pass.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

var ctx = context.Background()

// TestRepoManager runs the suite against repositories returned by
// newRepoManager, called once per sub test.
func TestRepoManager(t *testing.T, newRepoManager func() emulator.RepoManager) {
	t.Run("utxos", func(t *testing.T) {
		repo := newRepoManager()
		defer repo.Close()
		testUtxoRepository(t, repo.UtxoRepository())
	})
	t.Run("wallets", func(t *testing.T) {
		repo := newRepoManager()
		defer repo.Close()
		testWalletRepository(t, repo.WalletRepository())
	})
	t.Run("chain state", func(t *testing.T) {
		repo := newRepoManager()
		defer repo.Close()
		testChainStateRepository(t, repo.ChainStateRepository())
	})
}

func testUtxoRepository(t *testing.T, repo emulator.UtxoRepository) {
	token := ledger.Token{Policy: "aa", Name: "ticket", Quantity: 1}
	utxos := []ledger.Utxo{
		newUtxo(1, 0, "addr1", ledger.NewValue(1000)),
		newUtxo(1, 1, "addr2", ledger.NewValue(2000, token)),
		newUtxo(2, 0, "addr1", ledger.NewValue(3000)),
	}
	utxos[1].Datum = []byte{1, 2, 3}

	count, err := repo.AddUtxos(ctx, utxos)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = repo.AddUtxos(ctx, utxos[:1])
	require.NoError(t, err)
	require.Zero(t, count)

	utxo, err := repo.GetUtxo(ctx, utxos[1].OutPoint)
	require.NoError(t, err)
	require.Equal(t, utxos[1], *utxo)

	spendable, err := repo.GetSpendableUtxos(ctx, "addr1")
	require.NoError(t, err)
	require.Len(t, spendable, 2)

	all, err := repo.GetAllSpendableUtxos(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	created := []ledger.Utxo{newUtxo(3, 0, "addr2", ledger.NewValue(3900))}
	spent := []ledger.OutPoint{utxos[0].OutPoint, utxos[2].OutPoint}
	err = repo.ApplyTx(ctx, created[0].TxID, spent, created)
	require.NoError(t, err)

	_, err = repo.GetUtxo(ctx, utxos[0].OutPoint)
	require.ErrorIs(t, err, emulator.ErrUtxoNotFound)

	spendable, err = repo.GetSpendableUtxos(ctx, "addr1")
	require.NoError(t, err)
	require.Empty(t, spendable)

	spendable, err = repo.GetSpendableUtxos(ctx, "addr2")
	require.NoError(t, err)
	require.Len(t, spendable, 2)

	// spending an already spent output leaves the set untouched.
	replay := []ledger.Utxo{newUtxo(4, 0, "addr3", ledger.NewValue(1000))}
	err = repo.ApplyTx(
		ctx, replay[0].TxID,
		[]ledger.OutPoint{utxos[1].OutPoint, utxos[0].OutPoint}, replay,
	)
	require.ErrorIs(t, err, ledger.ErrStaleInputReference)

	_, err = repo.GetUtxo(ctx, utxos[1].OutPoint)
	require.NoError(t, err)
	spendable, err = repo.GetSpendableUtxos(ctx, "addr3")
	require.NoError(t, err)
	require.Empty(t, spendable)

	err = repo.ApplyTx(ctx, "txid", []ledger.OutPoint{newUtxo(9, 0, "", ledger.Value{}).OutPoint}, nil)
	require.ErrorIs(t, err, ledger.ErrStaleInputReference)
}

func testWalletRepository(t *testing.T, repo emulator.WalletRepository) {
	wallets := []emulator.Wallet{
		{Name: "bob", PrivateKey: []byte{2}, Address: "addr_bob", PubKeyHash: "pkh_bob"},
		{Name: "alice", PrivateKey: []byte{1}, Address: "addr_alice", PubKeyHash: "pkh_alice"},
	}
	for _, w := range wallets {
		require.NoError(t, repo.AddWallet(ctx, w))
	}

	err := repo.AddWallet(ctx, wallets[0])
	require.ErrorIs(t, err, emulator.ErrWalletExists)

	w, err := repo.GetWallet(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, wallets[1], *w)

	w, err = repo.GetWalletByPubKeyHash(ctx, "pkh_bob")
	require.NoError(t, err)
	require.Equal(t, wallets[0], *w)

	_, err = repo.GetWallet(ctx, "carol")
	require.ErrorIs(t, err, emulator.ErrWalletNotFound)
	_, err = repo.GetWalletByPubKeyHash(ctx, "pkh_carol")
	require.ErrorIs(t, err, emulator.ErrWalletNotFound)

	list, err := repo.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "alice", list[0].Name)
	require.Equal(t, "bob", list[1].Name)
}

func testChainStateRepository(t *testing.T, repo emulator.ChainStateRepository) {
	state, err := repo.GetChainState(ctx)
	require.NoError(t, err)
	require.Nil(t, state)

	genesis := time.UnixMilli(1_700_000_000_000).UTC()
	err = repo.UpdateChainState(ctx, emulator.ChainState{GenesisTime: genesis})
	require.NoError(t, err)

	err = repo.UpdateChainState(ctx, emulator.ChainState{GenesisTime: genesis, Slot: 10})
	require.NoError(t, err)

	state, err = repo.GetChainState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, uint64(10), state.Slot)
	require.True(t, genesis.Equal(state.GenesisTime))
}

func newUtxo(i int, vout uint32, address string, value ledger.Value) ledger.Utxo {
	return ledger.Utxo{
		OutPoint: ledger.NewOutPoint(fmt.Sprintf("%064x", i), vout),
		Output:   ledger.Output{Address: address, Value: value},
	}
}
