package ledger

// ScriptContext is the read-only view of a transaction handed to a script
// during evaluation. It carries the resolved inputs, in the same order as
// the transaction's inputs, and the purpose of the evaluation: either
// spending one of the inputs or minting under one policy.
type ScriptContext struct {
	Tx             *Tx
	ResolvedInputs []Utxo

	spendingIndex int
	policy        string
}

func NewSpendingContext(tx *Tx, resolved []Utxo, index int) *ScriptContext {
	return &ScriptContext{
		Tx:             tx,
		ResolvedInputs: resolved,
		spendingIndex:  index,
	}
}

func NewMintingContext(tx *Tx, resolved []Utxo, policy string) *ScriptContext {
	return &ScriptContext{
		Tx:             tx,
		ResolvedInputs: resolved,
		spendingIndex:  -1,
		policy:         policy,
	}
}

// CurrentInput returns the output being spent when evaluating a spending
// script.
func (c *ScriptContext) CurrentInput() (Utxo, bool) {
	if c.spendingIndex < 0 || c.spendingIndex >= len(c.ResolvedInputs) {
		return Utxo{}, false
	}
	return c.ResolvedInputs[c.spendingIndex], true
}

// CurrentPolicy returns the policy under evaluation when evaluating a
// minting script.
func (c *ScriptContext) CurrentPolicy() string {
	return c.policy
}

// IsSignedBy returns whether the pubkey hash is one of the transaction's
// declared required signers. The ledger guarantees every required signer
// has a valid witness.
func (c *ScriptContext) IsSignedBy(pubkeyHash string) bool {
	for _, s := range c.Tx.RequiredSigners {
		if s == pubkeyHash {
			return true
		}
	}
	return false
}

func (c *ScriptContext) ValidityWindow() ValidityWindow {
	return c.Tx.Validity
}

func (c *ScriptContext) SpendsOutPoint(outpoint OutPoint) bool {
	return c.Tx.SpendsOutPoint(outpoint)
}

// MintedUnder returns the net quantity minted (or burned, if negative) for
// each token name under the given policy.
func (c *ScriptContext) MintedUnder(policy string) map[string]int64 {
	minted := make(map[string]int64)
	for _, m := range c.Tx.Mints {
		if m.Policy != policy {
			continue
		}
		minted[m.Name] += m.Quantity
	}
	for name, q := range minted {
		if q == 0 {
			delete(minted, name)
		}
	}
	return minted
}

// PresentedValue returns the total value the spender brings to the
// transaction alongside the input being spent: the sum of all resolved
// inputs but the current one.
func (c *ScriptContext) PresentedValue() Value {
	var total Value
	for i, in := range c.ResolvedInputs {
		if i == c.spendingIndex {
			continue
		}
		total = total.Add(in.Value)
	}
	return total
}
