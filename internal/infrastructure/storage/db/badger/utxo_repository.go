package dbbadger

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/timshannon/badgerhold/v4"
)

// utxo is the stored form of a ledger output, keyed by outpoint.
type utxo struct {
	Key     string
	TxID    string
	VOut    uint32
	Address string
	Amount  uint64
	Tokens  []ledger.Token
	Datum   []byte
	Spent   bool
	SpentBy string
}

func newUtxo(u ledger.Utxo) utxo {
	return utxo{
		Key:     u.OutPoint.String(),
		TxID:    u.TxID,
		VOut:    u.VOut,
		Address: u.Address,
		Amount:  u.Value.Amount,
		Tokens:  u.Value.Tokens,
		Datum:   u.Datum,
	}
}

func (u utxo) toLedger() ledger.Utxo {
	return ledger.Utxo{
		OutPoint: ledger.NewOutPoint(u.TxID, u.VOut),
		Output: ledger.Output{
			Address: u.Address,
			Value:   ledger.NewValue(u.Amount, u.Tokens...),
			Datum:   u.Datum,
		},
	}
}

type utxoRepositoryImpl struct {
	store *badgerhold.Store
}

func NewUtxoRepositoryImpl(store *badgerhold.Store) emulator.UtxoRepository {
	return &utxoRepositoryImpl{store}
}

func (r *utxoRepositoryImpl) AddUtxos(
	_ context.Context, utxos []ledger.Utxo,
) (int, error) {
	count := 0
	err := r.store.Badger().Update(func(txn *badger.Txn) error {
		count = 0
		for _, u := range utxos {
			done, err := r.insertUtxo(txn, u)
			if err != nil {
				return err
			}
			if done {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *utxoRepositoryImpl) GetUtxo(
	_ context.Context, outpoint ledger.OutPoint,
) (*ledger.Utxo, error) {
	var u utxo
	if err := r.store.Get(outpoint.String(), &u); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, emulator.ErrUtxoNotFound
		}
		return nil, err
	}
	if u.Spent {
		return nil, emulator.ErrUtxoNotFound
	}
	lu := u.toLedger()
	return &lu, nil
}

func (r *utxoRepositoryImpl) GetSpendableUtxos(
	_ context.Context, address string,
) ([]ledger.Utxo, error) {
	query := badgerhold.Where("Address").Eq(address).And("Spent").Eq(false)
	return r.findUtxos(query)
}

func (r *utxoRepositoryImpl) GetAllSpendableUtxos(
	_ context.Context,
) ([]ledger.Utxo, error) {
	query := badgerhold.Where("Spent").Eq(false)
	return r.findUtxos(query)
}

func (r *utxoRepositoryImpl) ApplyTx(
	_ context.Context, txid string,
	spent []ledger.OutPoint, created []ledger.Utxo,
) error {
	return r.store.Badger().Update(func(txn *badger.Txn) error {
		for _, op := range spent {
			var u utxo
			if err := r.store.TxGet(txn, op.String(), &u); err != nil {
				if err == badgerhold.ErrNotFound {
					return fmt.Errorf("%w: %s", ledger.ErrStaleInputReference, op)
				}
				return err
			}
			if u.Spent {
				return fmt.Errorf("%w: %s", ledger.ErrStaleInputReference, op)
			}
			u.Spent = true
			u.SpentBy = txid
			if err := r.store.TxUpdate(txn, u.Key, u); err != nil {
				return err
			}
		}
		for _, u := range created {
			if _, err := r.insertUtxo(txn, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *utxoRepositoryImpl) insertUtxo(txn *badger.Txn, u ledger.Utxo) (bool, error) {
	stored := newUtxo(u)
	if err := r.store.TxInsert(txn, stored.Key, stored); err != nil {
		if err == badgerhold.ErrKeyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *utxoRepositoryImpl) findUtxos(query *badgerhold.Query) ([]ledger.Utxo, error) {
	var stored []utxo
	if err := r.store.Find(&stored, query); err != nil {
		return nil, err
	}

	utxos := make([]ledger.Utxo, 0, len(stored))
	for _, u := range stored {
		utxos = append(utxos, u.toLedger())
	}
	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxID != utxos[j].TxID {
			return utxos[i].TxID < utxos[j].TxID
		}
		return utxos[i].VOut < utxos[j].VOut
	})
	return utxos, nil
}
