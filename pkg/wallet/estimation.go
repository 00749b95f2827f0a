package wallet

const (
	P2WPKH = iota
	P2WSH
)

var (
	scriptPubKeySizeByScriptType = map[int]int{
		P2WPKH: 23, // len + opcodes (2) + hash(pubkey)
		P2WSH:  35, // len + opcodes (2) + hash(script)
	}
)

// EstimateTxSize makes an estimation of the virtual size of a transaction for
// which is required to specify the type of the inputs and outputs (P2WPKH for
// pubkey hash addresses, P2WSH for script addresses).
// P2WSH inputs need their witness size (redeemer and script) passed in
// inAuxiliaryWitnessSize, in order. Outputs' datum sizes are passed in
// outAuxiliaryDatumSize, one per output. Anything else committed by the
// transaction body (mints, collateral, signers) and witnessed (signatures
// not related to inputs) is accounted via auxiliaryBaseSize and
// auxiliaryWitnessSize.
func EstimateTxSize(
	inScriptTypes, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryDatumSize []int,
	auxiliaryBaseSize, auxiliaryWitnessSize int,
) int {
	baseSize := calcTxBaseSize(
		inScriptTypes, outScriptTypes, outAuxiliaryDatumSize,
	) + auxiliaryBaseSize
	totalSize := baseSize + calcTxWitnessSize(
		inScriptTypes, inAuxiliaryWitnessSize, outScriptTypes,
	) + auxiliaryWitnessSize

	weight := baseSize*3 + totalSize
	vsize := (weight + 3) / 4

	return vsize
}

func calcTxBaseSize(
	inScriptTypes, outScriptTypes, outAuxiliaryDatumSize []int,
) int {
	// hash + index + sequence + empty scriptsig
	inBaseSize := 40 + 1
	insSize := inBaseSize * len(inScriptTypes)

	// asset + unconf value + empty nonce
	outBaseSize := 33 + 9 + 1
	outsSize := 0
	for i, scriptType := range outScriptTypes {
		outsSize += outBaseSize + scriptPubKeySizeByScriptType[scriptType]
		datumSize := 0
		if i < len(outAuxiliaryDatumSize) {
			datumSize = outAuxiliaryDatumSize[i]
		}
		outsSize += varIntSerializeSize(uint64(datumSize)) + datumSize
	}

	// version + locktime + fee
	return 4 + 4 + 8 +
		varIntSerializeSize(uint64(len(inScriptTypes))) +
		varIntSerializeSize(uint64(len(outScriptTypes))) +
		insSize + outsSize
}

func calcTxWitnessSize(
	inScriptTypes, inAuxiliaryWitnessSize, outScriptTypes []int,
) int {
	insSize := 0
	auxCount := 0
	for _, scriptType := range inScriptTypes {
		if scriptType == P2WPKH {
			// len + witness[sig,pubkey]
			insSize += 1 + 107
		}
		if scriptType == P2WSH {
			if auxCount < len(inAuxiliaryWitnessSize) {
				insSize += inAuxiliaryWitnessSize[auxCount]
			}
			auxCount++
		}
	}

	// empty range proof + empty surjection proof
	outsSize := (1 + 1) * len(outScriptTypes)

	return insSize + outsSize
}

func varIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}

// SignatureWitnessSize is the size of a witness made of a DER signature and
// a compressed public key.
const SignatureWitnessSize = 1 + 107
