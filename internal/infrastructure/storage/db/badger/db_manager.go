package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/timshannon/badgerhold/v4"
)

const ledgerDir = "ledger"

type repoManager struct {
	store *badgerhold.Store

	utxoRepository       emulator.UtxoRepository
	walletRepository     emulator.WalletRepository
	chainStateRepository emulator.ChainStateRepository
}

// NewRepoManager opens (or creates if not exists) the badger store in the
// given base directory. If the directory is empty, the store is kept in
// memory.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (emulator.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, ledgerDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	return &repoManager{
		store:                store,
		utxoRepository:       NewUtxoRepositoryImpl(store),
		walletRepository:     NewWalletRepositoryImpl(store),
		chainStateRepository: NewChainStateRepositoryImpl(store),
	}, nil
}

func (d *repoManager) UtxoRepository() emulator.UtxoRepository {
	return d.utxoRepository
}

func (d *repoManager) WalletRepository() emulator.WalletRepository {
	return d.walletRepository
}

func (d *repoManager) ChainStateRepository() emulator.ChainStateRepository {
	return d.chainStateRepository
}

func (d *repoManager) Close() {
	d.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
