package ports

import (
	"context"
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// WalletInfo is the public key material of a wallet known to the ledger.
type WalletInfo struct {
	Name       string
	Address    string
	PubKeyHash string
}

// LedgerService is the ledger the escrow operates on. It owns the UTXO set,
// the wallets' keys, the clock and the evaluation of scripts.
type LedgerService interface {
	// GetWallet returns the address and pubkey hash of the named wallet.
	GetWallet(ctx context.Context, name string) (*WalletInfo, error)
	// GetSpendableOutputs returns the unspent outputs locked at address.
	GetSpendableOutputs(ctx context.Context, address string) ([]ledger.Utxo, error)
	// CurrentTime returns the ledger time.
	CurrentTime(ctx context.Context) (time.Time, error)
	// FinalizeAndSubmit balances the draft with the fee and a change output
	// to changeAddress, spending from extraFeeSources if needed, signs it
	// and submits it. It returns the id of the accepted transaction.
	FinalizeAndSubmit(
		ctx context.Context, draft *ledger.Tx,
		changeAddress string, extraFeeSources []ledger.Utxo,
	) (string, error)
}
