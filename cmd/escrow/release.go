package main

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/urfave/cli/v2"
)

var releaseCmd = cli.Command{
	Name:  "release",
	Usage: "spend a locked position with a cancel or a claim",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "wallet",
			Usage:    "the name of the wallet spending the position",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "position",
			Usage:    "the txid:vout of the position",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "redeemer",
			Usage: "the release path: cancel or claim",
			Value: "claim",
		},
	},
	Action: releaseAction,
}

func releaseAction(ctx *cli.Context) error {
	position, err := ledger.ParseOutPoint(ctx.String("position"))
	if err != nil {
		return err
	}
	redeemer, err := escrow.RedeemerFromString(ctx.String("redeemer"))
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	txid, err := svc.escrow.Release(context.Background(), application.ReleaseArgs{
		Position: position,
		Redeemer: redeemer,
		Wallet:   ctx.String("wallet"),
	})
	if err != nil {
		return err
	}

	printJSON(map[string]string{"txid": txid})
	return nil
}
