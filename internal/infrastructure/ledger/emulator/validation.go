package emulator

import (
	"context"
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/wallet"
)

func rejectf(format string, args ...interface{}) error {
	return fmt.Errorf(
		"%w: %s", ledger.ErrValidationRejected, fmt.Sprintf(format, args...),
	)
}

// validateTx runs the ledger rules first and then the scripts guarding the
// spent outputs and the minted policies.
func (e *Emulator) validateTx(
	ctx context.Context, tx *ledger.Tx, resolved []ledger.Utxo,
) error {
	if err := e.validateLedgerRules(ctx, tx, resolved); err != nil {
		return err
	}
	return e.validateScripts(tx, resolved)
}

func (e *Emulator) validateLedgerRules(
	ctx context.Context, tx *ledger.Tx, resolved []ledger.Utxo,
) error {
	if len(tx.Inputs) <= 0 {
		return rejectf("transaction has no inputs")
	}
	seen := make(map[ledger.OutPoint]struct{})
	for _, in := range tx.Inputs {
		if _, ok := seen[in.OutPoint]; ok {
			return rejectf("input %s spent twice", in.OutPoint)
		}
		seen[in.OutPoint] = struct{}{}
	}

	now, err := e.CurrentTime(ctx)
	if err != nil {
		return err
	}
	if !tx.Validity.Contains(now) {
		return rejectf("current time %s outside validity window", now)
	}

	for i, out := range tx.Outputs {
		if _, err := ledger.DecodeAddress(out.Address); err != nil {
			return rejectf("output %d: %s", i, err)
		}
		if out.Value.Amount < e.cfg.MinOutputValue {
			return rejectf(
				"output %d holds %d, below min output value %d",
				i, out.Value.Amount, e.cfg.MinOutputValue,
			)
		}
	}

	minted, burned := tx.MintedValue()
	inValue := minted
	for _, u := range resolved {
		inValue = inValue.Add(u.Value)
	}
	outValue := tx.OutputsValue().Add(burned).Add(ledger.NewValue(tx.Fee))
	if !inValue.Equal(outValue) {
		return rejectf("value not preserved: in %s, out %s", inValue, outValue)
	}

	if minFee := e.minFee(tx, resolved); tx.Fee < minFee {
		return rejectf("fee %d below min fee %d", tx.Fee, minFee)
	}

	signers, err := verifyWitnesses(tx)
	if err != nil {
		return err
	}
	for i, u := range resolved {
		if pkh, ok := pubkeyHash(u.Address); ok {
			if _, ok := signers[pkh]; !ok {
				return rejectf("input %d missing signature of owner", i)
			}
		}
	}
	for _, pkh := range tx.RequiredSigners {
		if _, ok := signers[pkh]; !ok {
			return rejectf("missing signature of required signer %s", pkh)
		}
	}

	if runsScripts(tx, resolved) {
		if err := e.validateCollateral(ctx, tx, signers); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) validateCollateral(
	ctx context.Context, tx *ledger.Tx, signers map[string]struct{},
) error {
	if len(tx.Collateral) <= 0 {
		return rejectf("transaction runs scripts without collateral")
	}
	var total uint64
	for _, op := range tx.Collateral {
		utxo, err := e.getUtxo(ctx, op)
		if err != nil {
			return err
		}
		pkh, ok := pubkeyHash(utxo.Address)
		if !ok {
			return rejectf("collateral %s not locked by a key", op)
		}
		if utxo.Value.HasTokens() {
			return rejectf("collateral %s holds tokens", op)
		}
		if _, ok := signers[pkh]; !ok {
			return rejectf("collateral %s missing signature of owner", op)
		}
		total += utxo.Value.Amount
	}
	if required := tx.Fee * e.cfg.CollateralPercentage / 100; total < required {
		return rejectf("collateral %d below required %d", total, required)
	}
	return nil
}

func (e *Emulator) validateScripts(tx *ledger.Tx, resolved []ledger.Utxo) error {
	for i, u := range resolved {
		if !isScriptAddress(u.Address) {
			continue
		}
		hash := scriptHash(u.Address)
		script, ok := tx.Script(hash)
		if !ok {
			return rejectf("input %d: script %s not attached", i, hash)
		}
		if len(u.Datum) <= 0 {
			return rejectf("input %d: output has no datum", i)
		}
		redeemer := tx.Inputs[i].Redeemer
		if redeemer == nil {
			return rejectf("input %d: missing redeemer", i)
		}
		ctx := ledger.NewSpendingContext(tx, resolved, i)
		if err := e.cfg.Engine.EvalSpend(script, u.Datum, redeemer, ctx); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}

	for _, policy := range tx.MintedPolicies() {
		script, ok := tx.Script(policy)
		if !ok {
			return rejectf("minting policy %s not attached", policy)
		}
		var redeemer []byte
		for _, m := range tx.Mints {
			if m.Policy == policy {
				redeemer = m.Redeemer
				break
			}
		}
		ctx := ledger.NewMintingContext(tx, resolved, policy)
		if err := e.cfg.Engine.EvalMint(script, redeemer, ctx); err != nil {
			return fmt.Errorf("policy %s: %w", policy, err)
		}
	}
	return nil
}

func verifyWitnesses(tx *ledger.Tx) (map[string]struct{}, error) {
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	signers := make(map[string]struct{})
	for i, w := range tx.Witnesses {
		pkh, ok := wallet.VerifyWitness(hash, w)
		if !ok {
			return nil, rejectf("witness %d: invalid signature", i)
		}
		signers[pkh] = struct{}{}
	}
	return signers, nil
}

func runsScripts(tx *ledger.Tx, resolved []ledger.Utxo) bool {
	if len(tx.Mints) > 0 {
		return true
	}
	for _, u := range resolved {
		if isScriptAddress(u.Address) {
			return true
		}
	}
	return false
}
