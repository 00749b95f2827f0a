package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
)

// WalletRepositoryImpl represents an in memory storage of wallets indexed by
// name.
type WalletRepositoryImpl struct {
	wallets map[string]emulator.Wallet
	lock    *sync.RWMutex
}

func NewWalletRepositoryImpl() *WalletRepositoryImpl {
	return &WalletRepositoryImpl{
		wallets: map[string]emulator.Wallet{},
		lock:    &sync.RWMutex{},
	}
}

func (r *WalletRepositoryImpl) AddWallet(
	_ context.Context, wallet emulator.Wallet,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.wallets[wallet.Name]; ok {
		return emulator.ErrWalletExists
	}
	r.wallets[wallet.Name] = wallet
	return nil
}

func (r *WalletRepositoryImpl) GetWallet(
	_ context.Context, name string,
) (*emulator.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wallet, ok := r.wallets[name]
	if !ok {
		return nil, emulator.ErrWalletNotFound
	}
	return &wallet, nil
}

func (r *WalletRepositoryImpl) GetWalletByPubKeyHash(
	_ context.Context, pubkeyHash string,
) (*emulator.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, wallet := range r.wallets {
		if wallet.PubKeyHash == pubkeyHash {
			w := wallet
			return &w, nil
		}
	}
	return nil, emulator.ErrWalletNotFound
}

func (r *WalletRepositoryImpl) ListWallets(
	_ context.Context,
) ([]emulator.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wallets := make([]emulator.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].Name < wallets[j].Name
	})
	return wallets, nil
}
