package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/timshannon/badgerhold/v4"
)

type walletRepositoryImpl struct {
	store *badgerhold.Store
}

func NewWalletRepositoryImpl(store *badgerhold.Store) emulator.WalletRepository {
	return &walletRepositoryImpl{store}
}

func (r *walletRepositoryImpl) AddWallet(
	_ context.Context, wallet emulator.Wallet,
) error {
	if err := r.store.Insert(wallet.Name, wallet); err != nil {
		if err == badgerhold.ErrKeyExists {
			return emulator.ErrWalletExists
		}
		return err
	}
	return nil
}

func (r *walletRepositoryImpl) GetWallet(
	_ context.Context, name string,
) (*emulator.Wallet, error) {
	var wallet emulator.Wallet
	if err := r.store.Get(name, &wallet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, emulator.ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepositoryImpl) GetWalletByPubKeyHash(
	_ context.Context, pubkeyHash string,
) (*emulator.Wallet, error) {
	var wallets []emulator.Wallet
	query := badgerhold.Where("PubKeyHash").Eq(pubkeyHash)
	if err := r.store.Find(&wallets, query); err != nil {
		return nil, err
	}
	if len(wallets) <= 0 {
		return nil, emulator.ErrWalletNotFound
	}
	return &wallets[0], nil
}

func (r *walletRepositoryImpl) ListWallets(
	_ context.Context,
) ([]emulator.Wallet, error) {
	var wallets []emulator.Wallet
	if err := r.store.Find(&wallets, nil); err != nil {
		return nil, err
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].Name < wallets[j].Name
	})
	return wallets, nil
}
