package application

import (
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// Topics of the position lifecycle events.
const (
	TopicPositionOpened    = "POSITION_OPENED"
	TopicPositionCancelled = "POSITION_CANCELLED"
	TopicPositionClaimed   = "POSITION_CLAIMED"
)

type OpenArgs struct {
	// FundingWallet is the name of the wallet locking the funds. It owns the
	// position.
	FundingWallet string
	// Amount is the locked amount of base unit.
	Amount uint64
	// EntitlementPolicy admits a Claim presenting any of its assets. Policy
	// gated escrows only.
	EntitlementPolicy string
	// Beneficiary is the pubkey hash admitted to Claim. Identity gated
	// escrows only.
	Beneficiary string
	// Deadline is optional.
	Deadline time.Time
	// FundingOutpoints, if any, are spent instead of selecting among the
	// wallet's outputs.
	FundingOutpoints []ledger.OutPoint
}

type ReleaseArgs struct {
	Position ledger.OutPoint
	Redeemer escrow.Redeemer
	// Wallet is the name of the wallet spending the position and receiving
	// its value.
	Wallet string
}

// PositionHandle identifies a locked position.
type PositionHandle struct {
	OutPoint     ledger.OutPoint
	Address      string
	Value        ledger.Value
	Datum        escrow.Datum
	TicketPolicy string
}

func newPositionHandle(p *domain.Position) *PositionHandle {
	return &PositionHandle{
		OutPoint:     p.OutPoint,
		Address:      p.Address,
		Value:        p.Value,
		Datum:        p.Datum,
		TicketPolicy: p.TicketPolicy,
	}
}

type positionEvent struct {
	OutPoint     string `json:"outpoint"`
	Address      string `json:"address"`
	Status       string `json:"status"`
	Amount       uint64 `json:"amount"`
	Owner        string `json:"owner"`
	Gate         string `json:"gate"`
	TicketPolicy string `json:"ticket_policy"`
	TxID         string `json:"txid,omitempty"`
}

func newPositionEvent(p *domain.Position) positionEvent {
	return positionEvent{
		OutPoint:     p.OutPoint.String(),
		Address:      p.Address,
		Status:       p.Status.String(),
		Amount:       p.Value.Amount,
		Owner:        p.Datum.Owner,
		Gate:         p.Datum.Gate.String(),
		TicketPolicy: p.TicketPolicy,
		TxID:         p.ReleaseTxID,
	}
}
