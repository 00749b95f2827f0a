package domain

import (
	"fmt"

	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

const (
	PositionStatusOpen PositionStatus = iota
	PositionStatusLocked
	PositionStatusCancelled
	PositionStatusClaimed
)

var statusToString = map[PositionStatus]string{
	PositionStatusOpen:      "OPEN",
	PositionStatusLocked:    "LOCKED",
	PositionStatusCancelled: "CANCELLED",
	PositionStatusClaimed:   "CLAIMED",
}

// PositionStatus represents the lifecycle of a position:
// Open -> Locked -> {Cancelled, Claimed}.
type PositionStatus int

func (s PositionStatus) String() string {
	str, ok := statusToString[s]
	if !ok {
		return "UNKNOWN"
	}
	return str
}

// Position is a deposit locked at the escrow address together with its
// claim ticket.
type Position struct {
	OutPoint     ledger.OutPoint
	Address      string
	Value        ledger.Value
	Datum        escrow.Datum
	TicketPolicy string
	Status       PositionStatus
	ReleaseTxID  string
}

// NewPosition returns a position in Open status, not yet confirmed by the
// ledger.
func NewPosition(
	address string, datum escrow.Datum, value ledger.Value, ticketPolicy string,
) (*Position, error) {
	if value.Amount == 0 {
		return nil, ErrPositionEmptyValue
	}
	if err := datum.Validate(); err != nil {
		return nil, err
	}
	return &Position{
		Address:      address,
		Value:        value,
		Datum:        datum,
		TicketPolicy: ticketPolicy,
		Status:       PositionStatusOpen,
	}, nil
}

// NewPositionFromUtxo restores a Locked position from an unspent output at
// the escrow address. The output must hold exactly one ticket named
// ticketName.
func NewPositionFromUtxo(utxo ledger.Utxo, ticketName string) (*Position, error) {
	if len(utxo.Datum) <= 0 {
		return nil, ErrPositionMissingDatum
	}
	datum, err := escrow.DecodeDatum(utxo.Datum)
	if err != nil {
		return nil, fmt.Errorf("invalid position datum: %w", err)
	}

	var ticketPolicy string
	for _, t := range utxo.Value.Tokens {
		if t.Name != ticketName || t.Quantity != 1 {
			continue
		}
		if ticketPolicy != "" {
			return nil, ErrPositionMissingTicket
		}
		ticketPolicy = t.Policy
	}
	if ticketPolicy == "" {
		return nil, ErrPositionMissingTicket
	}

	return &Position{
		OutPoint:     utxo.OutPoint,
		Address:      utxo.Address,
		Value:        utxo.Value,
		Datum:        *datum,
		TicketPolicy: ticketPolicy,
		Status:       PositionStatusLocked,
	}, nil
}

// Lock brings an Open position to Locked once the ledger accepted the
// transaction creating its output.
func (p *Position) Lock(outpoint ledger.OutPoint) error {
	if p.Status != PositionStatusOpen {
		return ErrPositionNotOpen
	}
	p.OutPoint = outpoint
	p.Status = PositionStatusLocked
	return nil
}

// Release brings a Locked position to its terminal status according to the
// redeemer used to spend it.
func (p *Position) Release(redeemer escrow.Redeemer, txid string) error {
	if p.Status != PositionStatusLocked {
		return ErrPositionNotLocked
	}
	switch redeemer {
	case escrow.Cancel:
		p.Status = PositionStatusCancelled
	case escrow.Claim:
		p.Status = PositionStatusClaimed
	default:
		return ErrUnknownRedeemer
	}
	p.ReleaseTxID = txid
	return nil
}

func (p *Position) IsLocked() bool {
	return p.Status == PositionStatusLocked
}

func (p *Position) IsReleased() bool {
	return p.Status == PositionStatusCancelled || p.Status == PositionStatusClaimed
}
