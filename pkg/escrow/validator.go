package escrow

import (
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/vulpemventures/go-elements/network"
)

// ScriptKind identifies the escrow validator in a ledger.ScriptEngine.
const ScriptKind = "escrow/v1"

// DeadlinePolicy tells whether the validator constrains the validity
// window of a spend against the datum deadline.
type DeadlinePolicy uint8

const (
	DeadlineIgnored DeadlinePolicy = iota
	// DeadlineEnforced requires a Cancel to be valid only up to the deadline
	// and a Claim only from the deadline on.
	DeadlineEnforced
)

func (p DeadlinePolicy) String() string {
	switch p {
	case DeadlineIgnored:
		return "ignored"
	case DeadlineEnforced:
		return "enforced"
	default:
		return "unknown"
	}
}

// Params instantiate the validator. Different params produce different
// scripts, hence different escrow addresses.
type Params struct {
	Gate           ClaimGate
	DeadlinePolicy DeadlinePolicy
}

func (p Params) validate() error {
	if err := p.Gate.validate(); err != nil {
		return err
	}
	if p.DeadlinePolicy > DeadlineEnforced {
		return ErrUnknownDeadlinePolicy
	}
	return nil
}

func (p Params) Serialize() []byte {
	return []byte{byte(p.Gate), byte(p.DeadlinePolicy)}
}

func DeserializeParams(buf []byte) (Params, error) {
	if len(buf) != 2 {
		return Params{}, fmt.Errorf("invalid escrow params length %d", len(buf))
	}
	p := Params{ClaimGate(buf[0]), DeadlinePolicy(buf[1])}
	if err := p.validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// NewScript returns the ledger script of the validator with the given params.
func NewScript(params Params) (ledger.Script, error) {
	if err := params.validate(); err != nil {
		return ledger.Script{}, err
	}
	return ledger.NewScript(ScriptKind, params.Serialize()), nil
}

// Address returns the escrow address of the validator with the given params.
func Address(params Params, net *network.Network) (string, error) {
	script, err := NewScript(params)
	if err != nil {
		return "", err
	}
	return script.Address(net)
}

// Validator decides whether a locked position may be spent.
type Validator struct {
	params Params
}

func NewValidator(params Params) (*Validator, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Validator{params}, nil
}

// LoadValidator is the ledger.ValidatorLoader of the escrow script kind.
func LoadValidator(buf []byte) (ledger.Validator, error) {
	params, err := DeserializeParams(buf)
	if err != nil {
		return nil, err
	}
	return &Validator{params}, nil
}

// Validate admits a Cancel signed by the owner, or a Claim that satisfies
// the datum claim gate. With DeadlineEnforced, the validity window of the
// spend must also lie entirely on the proper side of the deadline.
func (v *Validator) Validate(
	rawDatum, rawRedeemer []byte, ctx *ledger.ScriptContext,
) error {
	datum, err := DecodeDatum(rawDatum)
	if err != nil {
		return ErrMalformedDatum
	}
	redeemer, err := DecodeRedeemer(rawRedeemer)
	if err != nil {
		return err
	}
	if datum.Gate != v.params.Gate {
		return ErrGateMismatch
	}

	switch redeemer {
	case Cancel:
		if !ctx.IsSignedBy(datum.Owner) {
			return ErrMissingOwnerSignature
		}
	case Claim:
		if err := v.validateClaim(datum, ctx); err != nil {
			return err
		}
	}

	return v.validateDeadline(datum, redeemer, ctx.ValidityWindow())
}

func (v *Validator) validateClaim(datum *Datum, ctx *ledger.ScriptContext) error {
	if datum.Gate == IdentityGated {
		if !ctx.IsSignedBy(datum.Beneficiary) {
			return ErrMissingBeneficiarySignature
		}
		return nil
	}

	if _, ok := ctx.CurrentInput(); !ok {
		return ErrNoCurrentInput
	}
	if !ctx.PresentedValue().HasPolicy(datum.EntitlementPolicy) {
		return ErrMissingEntitlement
	}
	return nil
}

func (v *Validator) validateDeadline(
	datum *Datum, redeemer Redeemer, window ledger.ValidityWindow,
) error {
	if v.params.DeadlinePolicy != DeadlineEnforced || !datum.HasDeadline() {
		return nil
	}

	switch redeemer {
	case Cancel:
		if window.To.IsZero() || window.To.After(datum.Deadline) {
			return ErrCancelAfterDeadline
		}
	case Claim:
		if window.From.IsZero() || window.From.Before(datum.Deadline) {
			return ErrClaimBeforeDeadline
		}
	}
	return nil
}
