package escrow

import (
	"errors"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// RejectionError is returned by the validator when a spend is not admitted.
// It names the failed condition and matches ledger.ErrValidationRejected.
type RejectionError struct {
	Condition string
}

func (e *RejectionError) Error() string {
	return "escrow: " + e.Condition
}

func (e *RejectionError) Unwrap() error {
	return ledger.ErrValidationRejected
}

var (
	// ErrMalformedDatum is returned when the datum attached to the spent
	// output can't be decoded.
	ErrMalformedDatum = &RejectionError{"malformed datum"}
	// ErrMalformedRedeemer is returned for redeemers outside {Cancel, Claim}.
	ErrMalformedRedeemer = &RejectionError{"malformed redeemer"}
	// ErrGateMismatch is returned when the datum claim gate differs from the
	// one the validator is instantiated with.
	ErrGateMismatch = &RejectionError{"datum claim gate does not match validator"}
	// ErrMissingOwnerSignature is returned when a Cancel is not signed by the
	// position owner.
	ErrMissingOwnerSignature = &RejectionError{"transaction not signed by owner"}
	// ErrMissingBeneficiarySignature is returned when an identity gated Claim
	// is not signed by the beneficiary.
	ErrMissingBeneficiarySignature = &RejectionError{"transaction not signed by beneficiary"}
	// ErrMissingEntitlement is returned when a policy gated Claim does not
	// present any asset of the entitlement policy.
	ErrMissingEntitlement = &RejectionError{"entitlement asset not presented"}
	// ErrCancelAfterDeadline is returned when a Cancel may be included after
	// the position deadline.
	ErrCancelAfterDeadline = &RejectionError{"cancel window extends past deadline"}
	// ErrClaimBeforeDeadline is returned when a Claim may be included before
	// the position deadline.
	ErrClaimBeforeDeadline = &RejectionError{"claim window starts before deadline"}
	// ErrNoCurrentInput is returned when the validator is not evaluated for
	// a spend.
	ErrNoCurrentInput = &RejectionError{"no input under evaluation"}
)

var (
	// ErrInvalidOwner is returned when the owner is not a valid pubkey hash.
	ErrInvalidOwner = errors.New("owner must be a hex encoded 20-byte pubkey hash")
	// ErrInvalidBeneficiary is returned when the beneficiary is not a valid
	// pubkey hash.
	ErrInvalidBeneficiary = errors.New(
		"beneficiary must be a hex encoded 20-byte pubkey hash",
	)
	// ErrInvalidEntitlementPolicy is returned when the entitlement policy is
	// not a hex encoded policy id.
	ErrInvalidEntitlementPolicy = errors.New(
		"entitlement policy must be a hex encoded policy id",
	)
	// ErrMixedGate is returned when a datum carries the fields of both claim
	// gates or of the wrong one.
	ErrMixedGate = errors.New("datum must carry only the fields of its claim gate")
	// ErrUnknownGate is returned for claim gates other than policy or identity.
	ErrUnknownGate = errors.New("unknown claim gate")
	// ErrUnknownDeadlinePolicy is returned for unknown deadline policies.
	ErrUnknownDeadlinePolicy = errors.New("unknown deadline policy")
)
