package ledger

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/btcsuite/btcd/wire"
)

const (
	txVersion = 1
	pver      = 0
	maxItems  = 1 << 16
	maxBytes  = 1 << 20
)

// SerializeBody returns the canonical encoding of the transaction without
// its witnesses.
func (tx *Tx) SerializeBody() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := tx.encodeBody(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (tx *Tx) encodeBody(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(txVersion)); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Inputs))); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if err := WriteOutPoint(w, in.OutPoint); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, pver, in.Redeemer); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Collateral))); err != nil {
		return err
	}
	for _, op := range tx.Collateral {
		if err := WriteOutPoint(w, op); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Outputs))); err != nil {
		return err
	}
	for _, out := range tx.Outputs {
		if err := wire.WriteVarString(w, pver, out.Address); err != nil {
			return err
		}
		if err := WriteValue(w, out.Value); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, pver, out.Datum); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Mints))); err != nil {
		return err
	}
	for _, m := range tx.Mints {
		if err := wire.WriteVarString(w, pver, m.Policy); err != nil {
			return err
		}
		if err := wire.WriteVarString(w, pver, m.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, m.Quantity); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, pver, m.Redeemer); err != nil {
			return err
		}
	}

	if err := WriteTime(w, tx.Validity.From); err != nil {
		return err
	}
	if err := WriteTime(w, tx.Validity.To); err != nil {
		return err
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.RequiredSigners))); err != nil {
		return err
	}
	for _, s := range tx.RequiredSigners {
		if err := wire.WriteVarString(w, pver, s); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.Scripts))); err != nil {
		return err
	}
	for _, s := range tx.Scripts {
		if err := wire.WriteVarString(w, pver, s.Kind); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, pver, s.Params); err != nil {
			return err
		}
	}

	return binary.Write(w, binary.LittleEndian, tx.Fee)
}

// WriteOutPoint encodes an outpoint as a var string txid followed by the
// little-endian output index.
func WriteOutPoint(w io.Writer, op OutPoint) error {
	if err := wire.WriteVarString(w, pver, op.TxID); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, op.VOut)
}

func ReadOutPoint(r io.Reader) (OutPoint, error) {
	txid, err := wire.ReadVarString(r, pver)
	if err != nil {
		return OutPoint{}, err
	}
	var vout uint32
	if err := binary.Read(r, binary.LittleEndian, &vout); err != nil {
		return OutPoint{}, err
	}
	return OutPoint{txid, vout}, nil
}

func WriteValue(w io.Writer, v Value) error {
	if err := binary.Write(w, binary.LittleEndian, v.Amount); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, pver, uint64(len(v.Tokens))); err != nil {
		return err
	}
	for _, t := range v.Tokens {
		if err := wire.WriteVarString(w, pver, t.Policy); err != nil {
			return err
		}
		if err := wire.WriteVarString(w, pver, t.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, t.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func ReadValue(r io.Reader) (Value, error) {
	var amount uint64
	if err := binary.Read(r, binary.LittleEndian, &amount); err != nil {
		return Value{}, err
	}
	count, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return Value{}, err
	}
	if count > maxItems {
		return Value{}, io.ErrUnexpectedEOF
	}
	tokens := make([]Token, 0, count)
	for i := uint64(0); i < count; i++ {
		policy, err := wire.ReadVarString(r, pver)
		if err != nil {
			return Value{}, err
		}
		name, err := wire.ReadVarString(r, pver)
		if err != nil {
			return Value{}, err
		}
		var quantity uint64
		if err := binary.Read(r, binary.LittleEndian, &quantity); err != nil {
			return Value{}, err
		}
		tokens = append(tokens, Token{policy, name, quantity})
	}
	return NewValue(amount, tokens...), nil
}

// WriteTime encodes t as unix milliseconds, with 0 for the zero time.
func WriteTime(w io.Writer, t time.Time) error {
	var ms int64
	if !t.IsZero() {
		ms = t.UnixMilli()
	}
	return binary.Write(w, binary.LittleEndian, ms)
}

func ReadTime(r io.Reader) (time.Time, error) {
	var ms int64
	if err := binary.Read(r, binary.LittleEndian, &ms); err != nil {
		return time.Time{}, err
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms).UTC(), nil
}

// ReadBytes reads var bytes bounded to a sane maximum size.
func ReadBytes(r io.Reader, field string) ([]byte, error) {
	return wire.ReadVarBytes(r, pver, maxBytes, field)
}

func WriteBytes(w io.Writer, b []byte) error {
	return wire.WriteVarBytes(w, pver, b)
}

func ReadString(r io.Reader) (string, error) {
	return wire.ReadVarString(r, pver)
}

func WriteString(w io.Writer, s string) error {
	return wire.WriteVarString(w, pver, s)
}
