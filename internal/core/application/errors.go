package application

import (
	"errors"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

var (
	// ErrValidationRejected is returned when the ledger rejects a transaction
	// because a script or a ledger rule is not satisfied.
	ErrValidationRejected = ledger.ErrValidationRejected
	// ErrInsufficientFunds is returned when the funding outputs can't cover
	// the locked amount and the fee.
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	// ErrStaleInputReference is returned when an output to spend has already
	// been spent or never existed.
	ErrStaleInputReference = ledger.ErrStaleInputReference

	// ErrNullLedgerService is returned when creating the service without a
	// ledger.
	ErrNullLedgerService = errors.New("ledger service must not be null")
	// ErrMissingCollateral is returned when the spending wallet has no output
	// without tokens to use as collateral.
	ErrMissingCollateral = errors.New("no output eligible as collateral")
	// ErrMissingEntitlement is returned when claiming a policy gated position
	// without holding an asset of the entitlement policy.
	ErrMissingEntitlement = errors.New("wallet holds no entitlement asset")
	// ErrInvalidAmount is returned when locking less than the min output
	// value.
	ErrInvalidAmount = errors.New("amount below min output value")
	// ErrUnknownWallet is returned when the ledger can't resolve a wallet.
	ErrUnknownWallet = errors.New("unknown wallet")
	// ErrTicketAsEntitlement is returned when the entitlement policy is the
	// one of the ticket being minted.
	ErrTicketAsEntitlement = errors.New(
		"entitlement policy must differ from the ticket policy",
	)
)
