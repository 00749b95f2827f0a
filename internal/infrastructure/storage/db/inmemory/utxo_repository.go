package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

type utxoInfo struct {
	utxo    ledger.Utxo
	spentBy string
}

// UtxoRepositoryImpl represents an in memory storage of the UTXO set.
type UtxoRepositoryImpl struct {
	utxos map[ledger.OutPoint]*utxoInfo
	lock  *sync.RWMutex
}

func NewUtxoRepositoryImpl() *UtxoRepositoryImpl {
	return &UtxoRepositoryImpl{
		utxos: map[ledger.OutPoint]*utxoInfo{},
		lock:  &sync.RWMutex{},
	}
}

func (r *UtxoRepositoryImpl) AddUtxos(
	_ context.Context, utxos []ledger.Utxo,
) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.addUtxos(utxos), nil
}

func (r *UtxoRepositoryImpl) GetUtxo(
	_ context.Context, outpoint ledger.OutPoint,
) (*ledger.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	info, ok := r.utxos[outpoint]
	if !ok || info.spentBy != "" {
		return nil, emulator.ErrUtxoNotFound
	}
	utxo := info.utxo
	return &utxo, nil
}

func (r *UtxoRepositoryImpl) GetSpendableUtxos(
	_ context.Context, address string,
) ([]ledger.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getSpendableUtxos(func(u ledger.Utxo) bool {
		return u.Address == address
	}), nil
}

func (r *UtxoRepositoryImpl) GetAllSpendableUtxos(
	_ context.Context,
) ([]ledger.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getSpendableUtxos(func(ledger.Utxo) bool { return true }), nil
}

func (r *UtxoRepositoryImpl) ApplyTx(
	_ context.Context, txid string,
	spent []ledger.OutPoint, created []ledger.Utxo,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, op := range spent {
		info, ok := r.utxos[op]
		if !ok || info.spentBy != "" {
			return fmt.Errorf("%w: %s", ledger.ErrStaleInputReference, op)
		}
	}
	for _, op := range spent {
		r.utxos[op].spentBy = txid
	}
	r.addUtxos(created)
	return nil
}

func (r *UtxoRepositoryImpl) addUtxos(utxos []ledger.Utxo) int {
	count := 0
	for _, u := range utxos {
		if _, ok := r.utxos[u.OutPoint]; ok {
			continue
		}
		r.utxos[u.OutPoint] = &utxoInfo{utxo: u}
		count++
	}
	return count
}

func (r *UtxoRepositoryImpl) getSpendableUtxos(
	filter func(ledger.Utxo) bool,
) []ledger.Utxo {
	utxos := make([]ledger.Utxo, 0)
	for _, info := range r.utxos {
		if info.spentBy == "" && filter(info.utxo) {
			utxos = append(utxos, info.utxo)
		}
	}
	sortUtxos(utxos)
	return utxos
}

func sortUtxos(utxos []ledger.Utxo) {
	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxID != utxos[j].TxID {
			return utxos[i].TxID < utxos[j].TxID
		}
		return utxos[i].VOut < utxos[j].VOut
	})
}
