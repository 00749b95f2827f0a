package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/urfave/cli/v2"
)

var openCmd = cli.Command{
	Name:  "open",
	Usage: "lock funds of a wallet at the escrow address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "wallet",
			Usage:    "the name of the wallet funding and owning the position",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount of units to lock, with up to 8 decimals",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "entitlement_policy",
			Usage: "the policy of the assets entitled to claim (policy gated escrow)",
		},
		&cli.StringFlag{
			Name:  "beneficiary",
			Usage: "the name of the wallet entitled to claim (identity gated escrow)",
		},
		&cli.StringFlag{
			Name:  "deadline",
			Usage: "optional deadline as RFC3339 date or unix timestamp in seconds",
		},
		&cli.StringSliceFlag{
			Name:  "outpoint",
			Usage: "the txid:vout of an output to fund the position with",
		},
	},
	Action: openAction,
}

func openAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx.String("amount"))
	if err != nil {
		return err
	}
	deadline, err := parseDeadline(ctx.String("deadline"))
	if err != nil {
		return err
	}
	outpoints := make([]ledger.OutPoint, 0)
	for _, str := range ctx.StringSlice("outpoint") {
		op, err := ledger.ParseOutPoint(str)
		if err != nil {
			return err
		}
		outpoints = append(outpoints, op)
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	var beneficiary string
	if name := ctx.String("beneficiary"); name != "" {
		info, err := svc.ledger.GetWallet(c, name)
		if err != nil {
			return err
		}
		beneficiary = info.PubKeyHash
	}

	handle, err := svc.escrow.Open(c, application.OpenArgs{
		FundingWallet:     ctx.String("wallet"),
		Amount:            amount,
		EntitlementPolicy: ctx.String("entitlement_policy"),
		Beneficiary:       beneficiary,
		Deadline:          deadline,
		FundingOutpoints:  outpoints,
	})
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"outpoint":      handle.OutPoint.String(),
		"address":       handle.Address,
		"value":         newValueInfo(handle.Value),
		"ticket_policy": handle.TicketPolicy,
	})
	return nil
}

func parseDeadline(str string) (time.Time, error) {
	if str == "" {
		return time.Time{}, nil
	}
	if seconds, err := strconv.ParseInt(str, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	deadline, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q", str)
	}
	return deadline, nil
}
