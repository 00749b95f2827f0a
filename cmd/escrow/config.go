package main

import (
	"github.com/tdex-network/tdex-escrow/config"
	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:   "config",
	Usage:  "print the current configuration of the escrow CLI",
	Action: configAction,
}

func configAction(ctx *cli.Context) error {
	printJSON(config.AllSettings())
	return nil
}
