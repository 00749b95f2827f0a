package ledger

import (
	"encoding/hex"
	"time"

	"github.com/vulpemventures/go-elements/elementsutil"
	"golang.org/x/crypto/blake2b"
)

// Input references an output consumed by a transaction. Redeemer is set
// only for outputs locked at a script address.
type Input struct {
	OutPoint
	Redeemer []byte
}

// Output is a new output created by a transaction. Datum is optional and
// opaque to the ledger.
type Output struct {
	Address string
	Value   Value
	Datum   []byte
}

// Utxo is an output together with the outpoint identifying it.
type Utxo struct {
	OutPoint
	Output
}

// Mint creates (positive quantity) or burns (negative quantity) tokens
// under a policy. The redeemer is handed to the policy script.
type Mint struct {
	Policy   string
	Name     string
	Quantity int64
	Redeemer []byte
}

// ValidityWindow bounds the time at which a transaction may be accepted.
// A zero bound is open.
type ValidityWindow struct {
	From time.Time
	To   time.Time
}

// Contains returns whether t lies in [From, To).
func (w ValidityWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// Witness is a signature over the transaction id.
type Witness struct {
	PubKey    []byte
	Signature []byte
}

// Tx is a ledger transaction. Witnesses are not part of the transaction id.
type Tx struct {
	Inputs          []Input
	Collateral      []OutPoint
	Outputs         []Output
	Mints           []Mint
	Validity        ValidityWindow
	RequiredSigners []string
	Scripts         []Script
	Fee             uint64
	Witnesses       []Witness
}

func NewTx() *Tx {
	return &Tx{}
}

func (tx *Tx) AddInput(outpoint OutPoint, redeemer []byte) {
	tx.Inputs = append(tx.Inputs, Input{outpoint, redeemer})
}

func (tx *Tx) AddCollateral(outpoint OutPoint) {
	tx.Collateral = append(tx.Collateral, outpoint)
}

func (tx *Tx) AddOutput(address string, value Value, datum []byte) {
	tx.Outputs = append(tx.Outputs, Output{address, value, datum})
}

func (tx *Tx) AddMint(mint Mint) {
	tx.Mints = append(tx.Mints, mint)
}

func (tx *Tx) AddSigner(pubkeyHash string) {
	for _, s := range tx.RequiredSigners {
		if s == pubkeyHash {
			return
		}
	}
	tx.RequiredSigners = append(tx.RequiredSigners, pubkeyHash)
}

func (tx *Tx) AttachScript(script Script) {
	hash := script.Hash()
	for _, s := range tx.Scripts {
		if s.Hash() == hash {
			return
		}
	}
	tx.Scripts = append(tx.Scripts, script)
}

// Script returns the attached script with the given hash.
func (tx *Tx) Script(hash string) (Script, bool) {
	for _, s := range tx.Scripts {
		if s.Hash() == hash {
			return s, true
		}
	}
	return Script{}, false
}

// SpendsOutPoint returns whether the transaction consumes the given output.
func (tx *Tx) SpendsOutPoint(outpoint OutPoint) bool {
	for _, in := range tx.Inputs {
		if in.OutPoint == outpoint {
			return true
		}
	}
	return false
}

// MintedPolicies returns the distinct policies of the transaction's mints,
// in order of first appearance.
func (tx *Tx) MintedPolicies() []string {
	seen := make(map[string]struct{})
	policies := make([]string, 0)
	for _, m := range tx.Mints {
		if _, ok := seen[m.Policy]; ok {
			continue
		}
		seen[m.Policy] = struct{}{}
		policies = append(policies, m.Policy)
	}
	return policies
}

// MintedValue returns the tokens created and destroyed by the transaction.
func (tx *Tx) MintedValue() (minted, burned Value) {
	for _, m := range tx.Mints {
		if m.Quantity > 0 {
			minted = minted.Add(NewValue(0, Token{m.Policy, m.Name, uint64(m.Quantity)}))
		}
		if m.Quantity < 0 {
			burned = burned.Add(NewValue(0, Token{m.Policy, m.Name, uint64(-m.Quantity)}))
		}
	}
	return
}

// OutputsValue returns the sum of the values of all outputs.
func (tx *Tx) OutputsValue() Value {
	var total Value
	for _, out := range tx.Outputs {
		total = total.Add(out.Value)
	}
	return total
}

// Hash returns the blake2b-256 digest of the serialized transaction body.
func (tx *Tx) Hash() ([]byte, error) {
	body, err := tx.SerializeBody()
	if err != nil {
		return nil, err
	}
	hash := blake2b.Sum256(body)
	return hash[:], nil
}

// ID returns the transaction id, the byte-reversed hex encoding of Hash.
func (tx *Tx) ID() (string, error) {
	hash, err := tx.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(elementsutil.ReverseBytes(hash)), nil
}

// Copy returns a deep copy of the transaction.
func (tx *Tx) Copy() *Tx {
	c := &Tx{
		Validity: tx.Validity,
		Fee:      tx.Fee,
	}
	for _, in := range tx.Inputs {
		c.Inputs = append(c.Inputs, Input{in.OutPoint, copyBytes(in.Redeemer)})
	}
	c.Collateral = append(c.Collateral, tx.Collateral...)
	for _, out := range tx.Outputs {
		c.Outputs = append(c.Outputs, Output{
			out.Address, NewValue(out.Value.Amount, out.Value.Tokens...), copyBytes(out.Datum),
		})
	}
	for _, m := range tx.Mints {
		m.Redeemer = copyBytes(m.Redeemer)
		c.Mints = append(c.Mints, m)
	}
	c.RequiredSigners = append(c.RequiredSigners, tx.RequiredSigners...)
	for _, s := range tx.Scripts {
		c.Scripts = append(c.Scripts, Script{s.Kind, copyBytes(s.Params)})
	}
	for _, w := range tx.Witnesses {
		c.Witnesses = append(c.Witnesses, Witness{copyBytes(w.PubKey), copyBytes(w.Signature)})
	}
	return c
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
