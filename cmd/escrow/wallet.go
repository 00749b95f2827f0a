package main

import (
	"context"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/urfave/cli/v2"
)

var walletNameFlag = cli.StringFlag{
	Name:     "name",
	Usage:    "the name of the wallet",
	Required: true,
}

var walletCmd = cli.Command{
	Name:  "wallet",
	Usage: "manage the wallets of the ledger",
	Subcommands: []*cli.Command{
		{
			Name:   "create",
			Usage:  "create a new wallet with a fresh key pair",
			Flags:  []cli.Flag{&walletNameFlag},
			Action: walletCreateAction,
		},
		{
			Name:  "fund",
			Usage: "create an output locked by the wallet out of thin air",
			Flags: []cli.Flag{
				&walletNameFlag,
				&cli.StringFlag{
					Name:     "amount",
					Usage:    "the amount of units, with up to 8 decimals",
					Required: true,
				},
				&cli.StringSliceFlag{
					Name:  "token",
					Usage: "a token to add to the output in the form policy:name:quantity",
				},
			},
			Action: walletFundAction,
		},
		{
			Name:   "balance",
			Usage:  "check the balance of a wallet",
			Flags:  []cli.Flag{&walletNameFlag},
			Action: walletBalanceAction,
		},
		{
			Name:   "list",
			Usage:  "list all wallets",
			Action: walletListAction,
		},
	},
}

func walletCreateAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := svc.ledger.CreateWallet(context.Background(), ctx.String("name"))
	if err != nil {
		return err
	}

	printJSON(info)
	return nil
}

func walletFundAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx.String("amount"))
	if err != nil {
		return err
	}
	tokens := make([]ledger.Token, 0)
	for _, str := range ctx.StringSlice("token") {
		token, err := parseToken(str)
		if err != nil {
			return err
		}
		tokens = append(tokens, token)
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	info, err := svc.ledger.GetWallet(c, ctx.String("name"))
	if err != nil {
		return err
	}
	utxo, err := svc.ledger.Fund(c, info.Address, ledger.NewValue(amount, tokens...))
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"outpoint": utxo.OutPoint.String(),
		"value":    newValueInfo(utxo.Value),
	})
	return nil
}

func walletBalanceAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	info, err := svc.ledger.GetWallet(c, ctx.String("name"))
	if err != nil {
		return err
	}
	utxos, err := svc.ledger.GetSpendableOutputs(c, info.Address)
	if err != nil {
		return err
	}

	var balance ledger.Value
	outpoints := make([]string, 0, len(utxos))
	for _, u := range utxos {
		balance = balance.Add(u.Value)
		outpoints = append(outpoints, u.OutPoint.String())
	}

	printJSON(map[string]interface{}{
		"address":   info.Address,
		"balance":   newValueInfo(balance),
		"outpoints": outpoints,
	})
	return nil
}

func walletListAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	wallets, err := svc.ledger.ListWallets(context.Background())
	if err != nil {
		return err
	}

	printJSON(wallets)
	return nil
}
