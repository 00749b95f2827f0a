package ticket

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// ScriptKind identifies the ticket minting policy in a ledger.ScriptEngine.
const ScriptKind = "ticket/v1"

// DefaultTokenName is the name of the minted ticket if none is configured.
const DefaultTokenName = "Escrow Ticket"

var (
	// ErrMissingSeed is returned when the minting tx does not spend the
	// policy seed.
	ErrMissingSeed = &RejectionError{"seed outpoint not spent"}
	// ErrInvalidMint is returned when the minted tokens are not exactly one
	// unit of the ticket name.
	ErrInvalidMint = &RejectionError{"must mint exactly one ticket"}

	// ErrEmptyTokenName is returned when instantiating a policy without
	// token name.
	ErrEmptyTokenName = errors.New("ticket token name must not be empty")
	// ErrInvalidSeed is returned when instantiating a policy without seed.
	ErrInvalidSeed = errors.New("ticket seed outpoint must not be empty")
)

// RejectionError is returned by the policy when a mint is not admitted. It
// matches ledger.ErrValidationRejected.
type RejectionError struct {
	Condition string
}

func (e *RejectionError) Error() string {
	return "ticket: " + e.Condition
}

func (e *RejectionError) Unwrap() error {
	return ledger.ErrValidationRejected
}

// Params instantiate a ticket policy. Since an outpoint can be spent only
// once, at most one ticket can ever be minted under a given policy.
type Params struct {
	Seed      ledger.OutPoint
	TokenName string
}

func (p Params) validate() error {
	if p.Seed.TxID == "" {
		return ErrInvalidSeed
	}
	if p.TokenName == "" {
		return ErrEmptyTokenName
	}
	return nil
}

func (p Params) Serialize() []byte {
	buf := &bytes.Buffer{}
	ledger.WriteOutPoint(buf, p.Seed)
	ledger.WriteString(buf, p.TokenName)
	return buf.Bytes()
}

func DeserializeParams(buf []byte) (Params, error) {
	r := bytes.NewReader(buf)
	seed, err := ledger.ReadOutPoint(r)
	if err != nil {
		return Params{}, fmt.Errorf("invalid ticket params: %w", err)
	}
	name, err := ledger.ReadString(r)
	if err != nil {
		return Params{}, fmt.Errorf("invalid ticket params: %w", err)
	}
	if r.Len() > 0 {
		return Params{}, fmt.Errorf("invalid ticket params: trailing bytes")
	}
	p := Params{seed, name}
	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Policy is the ticket minting policy bound to a seed outpoint.
type Policy struct {
	params Params
	script ledger.Script
}

func NewPolicy(params Params) (*Policy, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Policy{
		params: params,
		script: ledger.NewScript(ScriptKind, params.Serialize()),
	}, nil
}

// LoadPolicy is the ledger.PolicyLoader of the ticket script kind.
func LoadPolicy(buf []byte) (ledger.MintingPolicy, error) {
	params, err := DeserializeParams(buf)
	if err != nil {
		return nil, err
	}
	return NewPolicy(params)
}

func (p *Policy) Params() Params {
	return p.params
}

func (p *Policy) Script() ledger.Script {
	return p.script
}

// ID returns the policy id, the hash of the policy script.
func (p *Policy) ID() string {
	return p.script.Hash()
}

// Token returns one unit of the ticket.
func (p *Policy) Token() ledger.Token {
	return ledger.Token{Policy: p.ID(), Name: p.params.TokenName, Quantity: 1}
}

// Mint returns the mint entry creating the ticket.
func (p *Policy) Mint() ledger.Mint {
	return ledger.Mint{
		Policy:   p.ID(),
		Name:     p.params.TokenName,
		Quantity: 1,
		Redeemer: []byte{0},
	}
}

// ValidateMint admits a transaction minting exactly one unit of the ticket
// name, and nothing else, under this policy while spending the seed.
func (p *Policy) ValidateMint(_ []byte, ctx *ledger.ScriptContext) error {
	minted := ctx.MintedUnder(p.ID())
	if len(minted) != 1 || minted[p.params.TokenName] != 1 {
		return ErrInvalidMint
	}
	if !ctx.SpendsOutPoint(p.params.Seed) {
		return ErrMissingSeed
	}
	return nil
}
