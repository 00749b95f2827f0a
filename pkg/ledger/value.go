package ledger

import (
	"fmt"
	"sort"
)

// Token is a quantity of a native asset identified by the minting policy
// that controls it and a name within that policy.
type Token struct {
	Policy   string
	Name     string
	Quantity uint64
}

func (t Token) String() string {
	return fmt.Sprintf("%d %s.%s", t.Quantity, t.Policy, t.Name)
}

// Value is the content of an output: an amount of the base unit and an
// ordered list of tokens. Tokens are kept sorted by policy and name, with
// no duplicates and no zero quantities.
type Value struct {
	Amount uint64
	Tokens []Token
}

func NewValue(amount uint64, tokens ...Token) Value {
	return Value{Amount: amount, Tokens: normalizeTokens(tokens)}
}

func (v Value) Add(other Value) Value {
	tokens := make([]Token, 0, len(v.Tokens)+len(other.Tokens))
	tokens = append(tokens, v.Tokens...)
	tokens = append(tokens, other.Tokens...)
	return Value{v.Amount + other.Amount, normalizeTokens(tokens)}
}

// Sub returns v - other or ErrNegativeValue if other is not contained in v.
func (v Value) Sub(other Value) (Value, error) {
	if !v.Contains(other) {
		return Value{}, fmt.Errorf(
			"%w: %s does not contain %s", ErrNegativeValue, v, other,
		)
	}
	tokens := make([]Token, 0, len(v.Tokens))
	for _, t := range v.Tokens {
		t.Quantity -= other.QuantityOf(t.Policy, t.Name)
		tokens = append(tokens, t)
	}
	return Value{v.Amount - other.Amount, normalizeTokens(tokens)}, nil
}

// Contains returns whether every component of other is covered by v.
func (v Value) Contains(other Value) bool {
	if v.Amount < other.Amount {
		return false
	}
	for _, t := range other.Tokens {
		if v.QuantityOf(t.Policy, t.Name) < t.Quantity {
			return false
		}
	}
	return true
}

func (v Value) Equal(other Value) bool {
	return v.Contains(other) && other.Contains(v)
}

func (v Value) QuantityOf(policy, name string) uint64 {
	for _, t := range v.Tokens {
		if t.Policy == policy && t.Name == name {
			return t.Quantity
		}
	}
	return 0
}

// HasPolicy returns whether v holds a positive quantity of any token
// minted under the given policy.
func (v Value) HasPolicy(policy string) bool {
	for _, t := range v.Tokens {
		if t.Policy == policy && t.Quantity > 0 {
			return true
		}
	}
	return false
}

func (v Value) HasTokens() bool {
	return len(v.Tokens) > 0
}

func (v Value) IsZero() bool {
	return v.Amount == 0 && len(v.Tokens) == 0
}

func (v Value) String() string {
	str := fmt.Sprintf("%d", v.Amount)
	for _, t := range v.Tokens {
		str += " + " + t.String()
	}
	return str
}

func normalizeTokens(tokens []Token) []Token {
	if len(tokens) == 0 {
		return nil
	}
	type key struct{ policy, name string }
	sums := make(map[key]uint64)
	for _, t := range tokens {
		sums[key{t.Policy, t.Name}] += t.Quantity
	}
	out := make([]Token, 0, len(sums))
	for k, q := range sums {
		if q == 0 {
			continue
		}
		out = append(out, Token{k.policy, k.name, q})
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Policy != out[j].Policy {
			return out[i].Policy < out[j].Policy
		}
		return out[i].Name < out[j].Name
	})
	return out
}
