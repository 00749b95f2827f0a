package main

import (
	"context"
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/urfave/cli/v2"
)

var positionsCmd = cli.Command{
	Name:  "positions",
	Usage: "list the positions locked at the escrow address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "outpoint",
			Usage: "the txid:vout of a single position to show",
		},
	},
	Action: positionsAction,
}

type positionInfo struct {
	OutPoint          string    `json:"outpoint"`
	Status            string    `json:"status"`
	Value             valueInfo `json:"value"`
	Owner             string    `json:"owner"`
	Gate              string    `json:"gate"`
	EntitlementPolicy string    `json:"entitlement_policy,omitempty"`
	Beneficiary       string    `json:"beneficiary,omitempty"`
	Deadline          string    `json:"deadline,omitempty"`
	TicketPolicy      string    `json:"ticket_policy"`
}

func newPositionInfo(p domain.Position) positionInfo {
	var deadline string
	if p.Datum.HasDeadline() {
		deadline = p.Datum.Deadline.UTC().Format(time.RFC3339)
	}
	return positionInfo{
		OutPoint:          p.OutPoint.String(),
		Status:            p.Status.String(),
		Value:             newValueInfo(p.Value),
		Owner:             p.Datum.Owner,
		Gate:              p.Datum.Gate.String(),
		EntitlementPolicy: p.Datum.EntitlementPolicy,
		Beneficiary:       p.Datum.Beneficiary,
		Deadline:          deadline,
		TicketPolicy:      p.TicketPolicy,
	}
}

func positionsAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	if str := ctx.String("outpoint"); str != "" {
		outpoint, err := ledger.ParseOutPoint(str)
		if err != nil {
			return err
		}
		position, err := svc.escrow.GetPosition(c, outpoint)
		if err != nil {
			return err
		}
		printJSON(newPositionInfo(*position))
		return nil
	}

	positions, err := svc.escrow.ListPositions(c)
	if err != nil {
		return err
	}
	infos := make([]positionInfo, 0, len(positions))
	for _, p := range positions {
		infos = append(infos, newPositionInfo(p))
	}

	printJSON(map[string]interface{}{
		"address":   svc.escrow.EscrowAddress(),
		"positions": infos,
	})
	return nil
}
