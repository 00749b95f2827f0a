package inmemory

import (
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
)

type RepoManager struct {
	utxoRepository       *UtxoRepositoryImpl
	walletRepository     *WalletRepositoryImpl
	chainStateRepository *ChainStateRepositoryImpl
}

func NewRepoManager() emulator.RepoManager {
	return &RepoManager{
		utxoRepository:       NewUtxoRepositoryImpl(),
		walletRepository:     NewWalletRepositoryImpl(),
		chainStateRepository: NewChainStateRepositoryImpl(),
	}
}

func (d *RepoManager) UtxoRepository() emulator.UtxoRepository {
	return d.utxoRepository
}

func (d *RepoManager) WalletRepository() emulator.WalletRepository {
	return d.walletRepository
}

func (d *RepoManager) ChainStateRepository() emulator.ChainStateRepository {
	return d.chainStateRepository
}

func (d *RepoManager) Close() {}
