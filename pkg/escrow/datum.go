package escrow

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

const (
	datumVersion  = 1
	pubkeyHashLen = 20
)

// ClaimGate selects which condition admits a Claim.
type ClaimGate uint8

const (
	// PolicyGated admits a Claim presenting any asset of the entitlement
	// policy.
	PolicyGated ClaimGate = iota
	// IdentityGated admits a Claim signed by the beneficiary.
	IdentityGated
)

var (
	gateToString = map[ClaimGate]string{
		PolicyGated:   "policy",
		IdentityGated: "identity",
	}
	stringToGate = map[string]ClaimGate{
		"policy":   PolicyGated,
		"identity": IdentityGated,
	}
)

func ClaimGateFromString(str string) (ClaimGate, error) {
	gate, ok := stringToGate[str]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGate, str)
	}
	return gate, nil
}

func (g ClaimGate) String() string {
	str, ok := gateToString[g]
	if !ok {
		return "unknown"
	}
	return str
}

func (g ClaimGate) validate() error {
	if _, ok := gateToString[g]; !ok {
		return ErrUnknownGate
	}
	return nil
}

// Datum is the state attached to a locked position. Only the field of the
// datum's claim gate is set: EntitlementPolicy for PolicyGated, Beneficiary
// for IdentityGated. A zero Deadline means none.
type Datum struct {
	Owner             string
	Gate              ClaimGate
	EntitlementPolicy string
	Beneficiary       string
	Deadline          time.Time
}

func NewPolicyGatedDatum(
	owner, entitlementPolicy string, deadline time.Time,
) (*Datum, error) {
	d := &Datum{
		Owner:             owner,
		Gate:              PolicyGated,
		EntitlementPolicy: entitlementPolicy,
		Deadline:          deadline,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func NewIdentityGatedDatum(
	owner, beneficiary string, deadline time.Time,
) (*Datum, error) {
	d := &Datum{
		Owner:       owner,
		Gate:        IdentityGated,
		Beneficiary: beneficiary,
		Deadline:    deadline,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeDatum parses and validates a serialized datum.
func DecodeDatum(buf []byte) (*Datum, error) {
	r := bytes.NewReader(buf)

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != datumVersion {
		return nil, fmt.Errorf("unsupported datum version %d", version)
	}

	d := &Datum{}
	if d.Owner, err = ledger.ReadString(r); err != nil {
		return nil, err
	}
	gate, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	d.Gate = ClaimGate(gate)

	field, err := ledger.ReadString(r)
	if err != nil {
		return nil, err
	}
	switch d.Gate {
	case PolicyGated:
		d.EntitlementPolicy = field
	case IdentityGated:
		d.Beneficiary = field
	default:
		return nil, ErrUnknownGate
	}

	if d.Deadline, err = ledger.ReadTime(r); err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("datum has %d trailing bytes", r.Len())
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Datum) Validate() error {
	if !isPubKeyHash(d.Owner) {
		return ErrInvalidOwner
	}
	if err := d.Gate.validate(); err != nil {
		return err
	}

	switch d.Gate {
	case PolicyGated:
		if len(d.Beneficiary) > 0 {
			return ErrMixedGate
		}
		if buf, err := hex.DecodeString(d.EntitlementPolicy); err != nil || len(buf) == 0 {
			return ErrInvalidEntitlementPolicy
		}
	case IdentityGated:
		if len(d.EntitlementPolicy) > 0 {
			return ErrMixedGate
		}
		if !isPubKeyHash(d.Beneficiary) {
			return ErrInvalidBeneficiary
		}
	}
	return nil
}

func (d *Datum) HasDeadline() bool {
	return !d.Deadline.IsZero()
}

func (d *Datum) Encode() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(datumVersion)
	if err := d.encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Datum) encode(w io.Writer) error {
	if err := ledger.WriteString(w, d.Owner); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(d.Gate)}); err != nil {
		return err
	}
	field := d.EntitlementPolicy
	if d.Gate == IdentityGated {
		field = d.Beneficiary
	}
	if err := ledger.WriteString(w, field); err != nil {
		return err
	}
	return ledger.WriteTime(w, d.Deadline)
}

func isPubKeyHash(str string) bool {
	buf, err := hex.DecodeString(str)
	return err == nil && len(buf) == pubkeyHashLen
}
