package emulator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/wallet"
)

// Finalize balances a copy of the draft: it computes the fee, adds inputs
// from extraFeeSources as long as the inputs can't cover outputs and fee,
// adds a change output to changeAddress and signs the result with every
// key the emulator holds among the owners of inputs and collateral and
// the required signers.
// A change without tokens below the min output value is left to the fee.
// Drafts running scripts without collateral get the largest output without
// tokens among inputs and fee sources.
func (e *Emulator) Finalize(
	ctx context.Context, draft *ledger.Tx,
	changeAddress string, extraFeeSources []ledger.Utxo,
) (*ledger.Tx, error) {
	if _, err := ledger.DecodeAddress(changeAddress); err != nil {
		return nil, err
	}

	tx := draft.Copy()
	tx.Witnesses = nil
	tx.Fee = 0

	resolved, err := e.resolveInputs(ctx, tx.Inputs)
	if err != nil {
		return nil, err
	}

	sources := make([]ledger.Utxo, 0, len(extraFeeSources))
	for _, u := range extraFeeSources {
		if !tx.SpendsOutPoint(u.OutPoint) {
			sources = append(sources, u)
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Value.Amount > sources[j].Value.Amount
	})

	if runsScripts(tx, resolved) && len(tx.Collateral) <= 0 {
		candidates := make([]ledger.Utxo, 0, len(resolved)+len(sources))
		candidates = append(candidates, resolved...)
		candidates = append(candidates, sources...)
		collateral, ok := selectCollateral(candidates)
		if !ok {
			return nil, ErrMissingCollateral
		}
		tx.AddCollateral(collateral.OutPoint)
	}

	minted, burned := tx.MintedValue()
	changeIndex := len(tx.Outputs)

	for {
		inValue := minted
		for _, u := range resolved {
			inValue = inValue.Add(u.Value)
		}

		// estimate the fee as if the change output is always there.
		withChange := tx.Copy()
		withChange.AddOutput(changeAddress, inValue, nil)
		fee := e.minFee(withChange, resolved)

		required := tx.OutputsValue().Add(burned).Add(ledger.NewValue(fee))
		if change, err := inValue.Sub(required); err == nil {
			if !change.HasTokens() && change.Amount < e.cfg.MinOutputValue {
				tx.Fee = fee + change.Amount
				break
			}
			if change.Amount >= e.cfg.MinOutputValue {
				tx.Fee = fee
				tx.AddOutput(changeAddress, change, nil)
				break
			}
		}

		if len(sources) <= 0 {
			return nil, fmt.Errorf(
				"%w: inputs %s can't cover outputs and fee %s",
				ledger.ErrInsufficientFunds, inValue, required,
			)
		}
		utxo := sources[0]
		sources = sources[1:]
		tx.AddInput(utxo.OutPoint, nil)
		resolved = append(resolved, utxo)
	}

	if err := e.signTx(ctx, tx, resolved); err != nil {
		return nil, err
	}

	txid, _ := tx.ID()
	log.WithFields(log.Fields{
		"txid":   txid,
		"fee":    tx.Fee,
		"change": len(tx.Outputs) > changeIndex,
	}).Debug("emulator: finalized tx")
	return tx, nil
}

func (e *Emulator) signTx(
	ctx context.Context, tx *ledger.Tx, resolved []ledger.Utxo,
) error {
	signers := make([]string, 0)
	for _, u := range resolved {
		if pkh, ok := pubkeyHash(u.Address); ok {
			signers = append(signers, pkh)
		}
	}
	for _, op := range tx.Collateral {
		utxo, err := e.getUtxo(ctx, op)
		if err != nil {
			return err
		}
		if pkh, ok := pubkeyHash(utxo.Address); ok {
			signers = append(signers, pkh)
		}
	}
	signers = append(signers, tx.RequiredSigners...)

	signed := make(map[string]struct{})
	for _, pkh := range signers {
		if _, ok := signed[pkh]; ok {
			continue
		}
		signed[pkh] = struct{}{}

		record, err := e.repo.WalletRepository().GetWalletByPubKeyHash(ctx, pkh)
		if err != nil {
			// keys not held by the emulator are left to the submitter.
			if errors.Is(err, ErrWalletNotFound) {
				continue
			}
			return err
		}
		w, err := wallet.NewWalletFromKey(record.PrivateKey)
		if err != nil {
			return err
		}
		if err := w.SignTx(tx); err != nil {
			return err
		}
	}
	return nil
}

// selectCollateral returns the largest output without tokens locked by a
// key.
func selectCollateral(utxos []ledger.Utxo) (ledger.Utxo, bool) {
	var collateral ledger.Utxo
	found := false
	for _, u := range utxos {
		if _, ok := pubkeyHash(u.Address); !ok || u.Value.HasTokens() {
			continue
		}
		if !found || u.Value.Amount > collateral.Value.Amount {
			collateral = u
			found = true
		}
	}
	return collateral, found
}

func pubkeyHash(addr string) (string, bool) {
	decoded, err := ledger.DecodeAddress(addr)
	if err != nil || decoded.Type != ledger.PubKeyHashAddress {
		return "", false
	}
	return decoded.Hash, true
}
