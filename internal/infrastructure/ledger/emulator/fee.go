package emulator

import (
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/wallet"
)

const (
	// hash + index
	outpointSize = 33 + 4
	// hex pubkey hash + len
	signerSize = 40 + 1
	// from + to
	validitySize = 8 + 8
)

// minFee returns the minimum fee the transaction must pay given its size
// and the number of scripts it runs.
func (e *Emulator) minFee(tx *ledger.Tx, resolved []ledger.Utxo) uint64 {
	inScriptTypes := make([]int, 0, len(resolved))
	inAuxiliaryWitnessSize := make([]int, 0)
	scriptRuns := 0
	for i, u := range resolved {
		if isScriptAddress(u.Address) {
			inScriptTypes = append(inScriptTypes, wallet.P2WSH)
			size := 1 + len(tx.Inputs[i].Redeemer)
			if script, ok := tx.Script(scriptHash(u.Address)); ok {
				size += 2 + len(script.Kind) + len(script.Params)
			}
			inAuxiliaryWitnessSize = append(inAuxiliaryWitnessSize, size)
			scriptRuns++
			continue
		}
		inScriptTypes = append(inScriptTypes, wallet.P2WPKH)
	}

	outScriptTypes := make([]int, 0, len(tx.Outputs))
	outAuxiliaryDatumSize := make([]int, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		scriptType := wallet.P2WPKH
		if isScriptAddress(out.Address) {
			scriptType = wallet.P2WSH
		}
		outScriptTypes = append(outScriptTypes, scriptType)
		outAuxiliaryDatumSize = append(
			outAuxiliaryDatumSize, len(out.Datum)+tokensSize(out.Value),
		)
	}

	auxBaseSize := validitySize +
		outpointSize*len(tx.Collateral) + signerSize*len(tx.RequiredSigners)
	for _, m := range tx.Mints {
		auxBaseSize += 2 + len(m.Policy) + len(m.Name) + 8 + 1 + len(m.Redeemer)
	}
	auxWitnessSize := wallet.SignatureWitnessSize * len(tx.RequiredSigners)
	for _, s := range tx.Scripts {
		auxWitnessSize += 2 + len(s.Kind) + len(s.Params)
	}
	scriptRuns += len(tx.MintedPolicies())

	size := wallet.EstimateTxSize(
		inScriptTypes, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryDatumSize,
		auxBaseSize, auxWitnessSize,
	)
	return uint64(size)*e.cfg.FeePerByte +
		uint64(scriptRuns)*e.cfg.ScriptExecutionFee
}

func tokensSize(v ledger.Value) int {
	size := 0
	for _, t := range v.Tokens {
		size += 2 + len(t.Policy) + len(t.Name) + 8
	}
	return size
}

func isScriptAddress(addr string) bool {
	decoded, err := ledger.DecodeAddress(addr)
	return err == nil && decoded.Type == ledger.ScriptHashAddress
}

func scriptHash(addr string) string {
	decoded, err := ledger.DecodeAddress(addr)
	if err != nil {
		return ""
	}
	return decoded.Hash
}
