package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"
)

var tickCmd = cli.Command{
	Name:  "tick",
	Usage: "advance the ledger clock",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "slots",
			Usage: "the number of slots to advance",
			Value: 1,
		},
	},
	Action: tickAction,
}

func tickAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	now, err := svc.ledger.Tick(c, ctx.Uint64("slots"))
	if err != nil {
		return err
	}
	slot, err := svc.ledger.CurrentSlot(c)
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"slot": slot,
		"time": now.Format(time.RFC3339),
	})
	return nil
}
