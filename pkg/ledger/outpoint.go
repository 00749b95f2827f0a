package ledger

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

const txidLen = 32

// OutPoint identifies an output by the hash of the transaction that created
// it and its position in that transaction's output list.
type OutPoint struct {
	TxID string
	VOut uint32
}

func NewOutPoint(txid string, vout uint32) OutPoint {
	return OutPoint{txid, vout}
}

// ParseOutPoint parses the <txid>:<vout> string form of an outpoint.
func ParseOutPoint(str string) (OutPoint, error) {
	parts := strings.Split(str, ":")
	if len(parts) != 2 {
		return OutPoint{}, ErrInvalidOutPoint
	}
	buf, err := hex.DecodeString(parts[0])
	if err != nil || len(buf) != txidLen {
		return OutPoint{}, fmt.Errorf("%w: invalid txid", ErrInvalidOutPoint)
	}
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return OutPoint{}, fmt.Errorf("%w: invalid vout", ErrInvalidOutPoint)
	}
	return OutPoint{parts[0], uint32(vout)}, nil
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.VOut)
}

func (o OutPoint) IsZero() bool {
	return o.TxID == "" && o.VOut == 0
}
