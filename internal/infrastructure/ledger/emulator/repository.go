package emulator

import (
	"context"
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// Wallet is a key pair held by the emulator on behalf of a named user.
type Wallet struct {
	Name       string
	PrivateKey []byte
	Address    string
	PubKeyHash string
}

// ChainState is the emulated clock: the time of slot 0 and the current
// slot.
type ChainState struct {
	GenesisTime time.Time
	Slot        uint64
}

// UtxoRepository stores the UTXO set.
type UtxoRepository interface {
	// AddUtxos adds the given outputs, skipping those already stored, and
	// returns the number of those added.
	AddUtxos(ctx context.Context, utxos []ledger.Utxo) (int, error)
	// GetUtxo returns the unspent output with the given outpoint or
	// ErrUtxoNotFound.
	GetUtxo(ctx context.Context, outpoint ledger.OutPoint) (*ledger.Utxo, error)
	// GetSpendableUtxos returns the unspent outputs locked at address.
	GetSpendableUtxos(ctx context.Context, address string) ([]ledger.Utxo, error)
	// GetAllSpendableUtxos returns the whole UTXO set.
	GetAllSpendableUtxos(ctx context.Context) ([]ledger.Utxo, error)
	// ApplyTx atomically marks the spent outputs as spent by txid and adds the
	// created ones. It fails with ledger.ErrStaleInputReference, leaving the
	// set untouched, if any spent output is not unspent.
	ApplyTx(
		ctx context.Context, txid string,
		spent []ledger.OutPoint, created []ledger.Utxo,
	) error
}

// WalletRepository stores the emulator's wallets.
type WalletRepository interface {
	// AddWallet fails with ErrWalletExists if the name is taken.
	AddWallet(ctx context.Context, wallet Wallet) error
	// GetWallet returns the wallet with the given name or ErrWalletNotFound.
	GetWallet(ctx context.Context, name string) (*Wallet, error)
	// GetWalletByPubKeyHash returns the wallet with the given pubkey hash or
	// ErrWalletNotFound.
	GetWalletByPubKeyHash(ctx context.Context, pubkeyHash string) (*Wallet, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
}

// ChainStateRepository stores the emulated clock.
type ChainStateRepository interface {
	// GetChainState returns nil if the state was never stored.
	GetChainState(ctx context.Context) (*ChainState, error)
	UpdateChainState(ctx context.Context, state ChainState) error
}

// RepoManager holds all the emulator repositories.
type RepoManager interface {
	UtxoRepository() UtxoRepository
	WalletRepository() WalletRepository
	ChainStateRepository() ChainStateRepository
	Close()
}
