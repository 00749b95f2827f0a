package domain

import "errors"

var (
	// ErrPositionNotOpen is returned when locking a position that is not in
	// Open status.
	ErrPositionNotOpen = errors.New("position must be open")
	// ErrPositionNotLocked is returned when releasing a position that is not
	// locked.
	ErrPositionNotLocked = errors.New("position must be locked")
	// ErrPositionEmptyValue is returned when opening a position without
	// locked amount.
	ErrPositionEmptyValue = errors.New("position value must not be zero")
	// ErrPositionMissingDatum is returned when restoring a position from an
	// output without datum.
	ErrPositionMissingDatum = errors.New("position output has no datum")
	// ErrPositionMissingTicket is returned when restoring a position from an
	// output not holding a single claim ticket.
	ErrPositionMissingTicket = errors.New("position output has no claim ticket")
	// ErrUnknownRedeemer is returned when releasing a position with a
	// redeemer other than Cancel or Claim.
	ErrUnknownRedeemer = errors.New("unknown redeemer")
)
