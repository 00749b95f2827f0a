package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/config"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
	"github.com/urfave/cli/v2"
)

var (
	datadirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "the directory where the ledger state is stored",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network of the ledger addresses: liquid, testnet or regtest",
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "escrow"
	app.Usage = "Command line interface to operate escrow positions on a local ledger"
	app.Flags = []cli.Flag{&datadirFlag, &networkFlag}
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&configCmd,
		&walletCmd,
		&openCmd,
		&releaseCmd,
		&positionsCmd,
		&tickCmd,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func initConfig(ctx *cli.Context) error {
	if datadir := ctx.String(datadirFlag.Name); datadir != "" {
		config.Set(config.DatadirKey, datadir)
	}
	if net := ctx.String(networkFlag.Name); net != "" {
		config.Set(config.NetworkKey, net)
	}
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

type services struct {
	ledger *emulator.Emulator
	escrow application.EscrowService
}

// getServices opens the ledger and returns it together with the escrow
// service operating on it.
func getServices() (*services, func(), error) {
	repo, err := getRepoManager()
	if err != nil {
		return nil, nil, err
	}

	engine := ledger.NewScriptEngine(
		ledger.WithValidator(escrow.ScriptKind, escrow.LoadValidator),
		ledger.WithMintingPolicy(ticket.ScriptKind, ticket.LoadPolicy),
	)
	ledgerSvc, err := emulator.NewEmulator(emulator.Config{
		Network:              config.GetNetwork(),
		Engine:               engine,
		Repository:           repo,
		SlotLength:           config.GetDuration(config.SlotLengthKey),
		FeePerByte:           config.GetUint64(config.FeePerByteKey),
		ScriptExecutionFee:   config.GetUint64(config.ScriptExecutionFeeKey),
		MinOutputValue:       config.GetUint64(config.MinOutputValueKey),
		CollateralPercentage: config.GetUint64(config.CollateralPercentageKey),
	})
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	publisher, err := getPublisher()
	if err != nil {
		ledgerSvc.Close()
		return nil, nil, err
	}
	metrics, err := application.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		ledgerSvc.Close()
		return nil, nil, err
	}

	params, err := config.GetEscrowParams()
	if err != nil {
		ledgerSvc.Close()
		return nil, nil, err
	}
	escrowSvc, err := application.NewEscrowService(
		ledgerSvc, publisher, metrics, application.Config{
			Network:        config.GetNetwork(),
			Escrow:         params,
			TicketName:     config.GetString(config.TicketNameKey),
			MinOutputValue: config.GetUint64(config.MinOutputValueKey),
			FeeBudget:      config.GetUint64(config.FeeBudgetKey),
			ValidityMargin: config.GetDuration(config.ValidityMarginKey),
		},
	)
	if err != nil {
		ledgerSvc.Close()
		return nil, nil, err
	}

	return &services{ledgerSvc, escrowSvc}, ledgerSvc.Close, nil
}

func getRepoManager() (emulator.RepoManager, error) {
	if config.GetString(config.DbTypeKey) == config.DbTypeInMemory {
		return inmemory.NewRepoManager(), nil
	}

	if log.GetLevel() >= log.DebugLevel {
		return dbbadger.NewRepoManager(config.GetDbDir(), log.StandardLogger())
	}
	return dbbadger.NewRepoManager(config.GetDbDir(), nil)
}

// getPublisher returns a webhook publisher notifying the configured
// endpoints of every position event, or nil if there are none.
func getPublisher() (ports.EventPublisher, error) {
	endpoints := config.GetWebhookEndpoints()
	if len(endpoints) <= 0 {
		return nil, nil
	}

	pubsub, err := webhookpubsub.NewWebhookPubSubService(
		webhookpubsub.DefaultRequestTimeout,
		config.GetInt(config.WebhookRateLimitKey),
	)
	if err != nil {
		return nil, err
	}
	secret := config.GetString(config.WebhookSecretKey)
	for _, endpoint := range endpoints {
		if _, err := pubsub.Subscribe(ports.AnyTopic, endpoint, secret); err != nil {
			return nil, err
		}
	}
	return pubsub, nil
}

func printJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(jsonStr))
}

func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "[escrow] %v\n", err)
	os.Exit(1)
}
