package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTxSize(t *testing.T) {
	tests := []struct {
		name                   string
		inScriptTypes          []int
		inAuxiliaryWitnessSize []int
		outScriptTypes         []int
		outAuxiliaryDatumSize  []int
		auxBaseSize            int
		auxWitnessSize         int
		expectedSize           int
	}{
		{
			name:           "pubkey spend",
			inScriptTypes:  []int{P2WPKH},
			outScriptTypes: []int{P2WPKH, P2WPKH},
			expectedSize:   221,
		},
		{
			name:                  "lock into script",
			inScriptTypes:         []int{P2WPKH, P2WPKH},
			outScriptTypes:        []int{P2WSH, P2WPKH},
			outAuxiliaryDatumSize: []int{80, 0},
			auxBaseSize:           120,
			expectedSize:          221,
		},
		{
			name:                   "script spend",
			inScriptTypes:          []int{P2WPKH, P2WSH},
			inAuxiliaryWitnessSize: []int{60},
			outScriptTypes:         []int{P2WPKH, P2WSH},
			auxWitnessSize:         SignatureWitnessSize,
			expectedSize:           221,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			size := EstimateTxSize(
				tt.inScriptTypes, tt.inAuxiliaryWitnessSize,
				tt.outScriptTypes, tt.outAuxiliaryDatumSize,
				tt.auxBaseSize, tt.auxWitnessSize,
			)
			assert.GreaterOrEqual(t, size, tt.expectedSize)
		})
	}
}

func TestEstimateTxSizeGrowth(t *testing.T) {
	base := EstimateTxSize([]int{P2WPKH}, nil, []int{P2WPKH}, nil, 0, 0)

	withDatum := EstimateTxSize([]int{P2WPKH}, nil, []int{P2WSH}, []int{100}, 0, 0)
	require.Greater(t, withDatum, base+100)

	withWitness := EstimateTxSize([]int{P2WSH}, []int{400}, []int{P2WPKH}, nil, 0, 0)
	// witness bytes are discounted.
	require.Greater(t, withWitness, base)
	require.Less(t, withWitness, base+400)

	moreInputs := EstimateTxSize([]int{P2WPKH, P2WPKH}, nil, []int{P2WPKH}, nil, 0, 0)
	require.Greater(t, moreInputs, base)
}
