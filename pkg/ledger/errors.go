package ledger

import "errors"

var (
	// ErrValidationRejected is returned when a transaction fails either the
	// ledger rules or the evaluation of one of its scripts.
	ErrValidationRejected = errors.New("transaction rejected by validation")
	// ErrInsufficientFunds is returned when the available outputs can't cover
	// the requested value.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrStaleInputReference is returned when a transaction references an
	// output that is already spent or never existed.
	ErrStaleInputReference = errors.New("input references a spent or unknown output")
	// ErrInvalidOutPoint is returned when parsing a malformed outpoint string.
	ErrInvalidOutPoint = errors.New("outpoint must be in the form <txid>:<vout>")
	// ErrInvalidAddress is returned when an address can't be decoded.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrUnknownScriptKind is returned by the script engine for scripts whose
	// kind was never registered.
	ErrUnknownScriptKind = errors.New("unknown script kind")
	// ErrNegativeValue is returned when subtracting a value that is not
	// contained in the minuend.
	ErrNegativeValue = errors.New("value subtraction underflow")
)
