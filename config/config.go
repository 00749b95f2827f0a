package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
	"github.com/vulpemventures/go-elements/network"
)

const (
	// DatadirKey is the local data directory to store the ledger state
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the network to use. One of "liquid", "testnet" or "regtest"
	NetworkKey = "NETWORK"
	// DbTypeKey is the type of storage of the ledger. Either "badger" or "inmemory"
	DbTypeKey = "DB_TYPE"
	// ClaimGateKey selects the condition admitting a claim. Either "policy" or "identity"
	ClaimGateKey = "CLAIM_GATE"
	// EnforceDeadlineKey makes the escrow constrain releases to the position deadline
	EnforceDeadlineKey = "ENFORCE_DEADLINE"
	// TicketNameKey is the token name of the claim tickets
	TicketNameKey = "TICKET_NAME"
	// MinOutputValueKey is the min amount of base unit of every ledger output
	MinOutputValueKey = "MIN_OUTPUT_VALUE"
	// FeeBudgetKey is the amount reserved for fees when funding a position
	FeeBudgetKey = "FEE_BUDGET"
	// ValidityMarginKey is the duration in seconds of the validity window of releases
	ValidityMarginKey = "VALIDITY_MARGIN"
	// FeePerByteKey is the fee paid for each virtual byte of a transaction
	FeePerByteKey = "FEE_PER_BYTE"
	// ScriptExecutionFeeKey is the fee paid for each script run by a transaction
	ScriptExecutionFeeKey = "SCRIPT_EXECUTION_FEE"
	// SlotLengthKey is the duration in seconds of a ledger slot
	SlotLengthKey = "SLOT_LENGTH"
	// CollateralPercentageKey is the share of the fee the collateral must cover
	CollateralPercentageKey = "COLLATERAL_PERCENTAGE"
	// WebhookEndpointsKey is a comma separated list of endpoints notified of every position event
	WebhookEndpointsKey = "WEBHOOK_ENDPOINTS"
	// WebhookSecretKey is used to sign the requests to the webhook endpoints
	WebhookSecretKey = "WEBHOOK_SECRET"
	// WebhookRateLimitKey is the max number of webhook requests per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"

	DbLocation = "db"

	DbTypeBadger   = "badger"
	DbTypeInMemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("tdex-escrow", false)

	networks = map[string]*network.Network{
		network.Liquid.Name:  &network.Liquid,
		network.Testnet.Name: &network.Testnet,
		network.Regtest.Name: &network.Regtest,
	}
)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROW")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, network.Regtest.Name)
	vip.SetDefault(DbTypeKey, DbTypeBadger)
	vip.SetDefault(ClaimGateKey, escrow.PolicyGated.String())
	vip.SetDefault(EnforceDeadlineKey, false)
	vip.SetDefault(TicketNameKey, ticket.DefaultTokenName)
	vip.SetDefault(MinOutputValueKey, 2000)
	vip.SetDefault(FeeBudgetKey, 10000)
	vip.SetDefault(ValidityMarginKey, 100)
	vip.SetDefault(FeePerByteKey, 1)
	vip.SetDefault(ScriptExecutionFeeKey, 1000)
	vip.SetDefault(SlotLengthKey, 1)
	vip.SetDefault(CollateralPercentageKey, 150)
	vip.SetDefault(WebhookRateLimitKey, 10)
}

// InitConfig validates the current configuration and creates the datadir.
func InitConfig() error {
	if err := validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if GetString(DbTypeKey) == DbTypeBadger {
		if err := initDatadir(); err != nil {
			return fmt.Errorf("error while creating datadir: %w", err)
		}
	}
	return nil
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetUint64 ...
func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

// GetBool ...
func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDuration returns the duration of a key expressed in seconds.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Second
}

// GetNetwork ...
func GetNetwork() *network.Network {
	if net, ok := networks[GetString(NetworkKey)]; ok {
		return net
	}
	return &network.Regtest
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory of the ledger db, empty for an in-memory
// db.
func GetDbDir() string {
	if GetString(DbTypeKey) == DbTypeInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetEscrowParams returns the params of the escrow validator.
func GetEscrowParams() (escrow.Params, error) {
	gate, err := escrow.ClaimGateFromString(GetString(ClaimGateKey))
	if err != nil {
		return escrow.Params{}, err
	}
	deadlinePolicy := escrow.DeadlineIgnored
	if GetBool(EnforceDeadlineKey) {
		deadlinePolicy = escrow.DeadlineEnforced
	}
	return escrow.Params{Gate: gate, DeadlinePolicy: deadlinePolicy}, nil
}

// GetWebhookEndpoints returns the list of endpoints notified of position
// events.
func GetWebhookEndpoints() []string {
	endpoints := make([]string, 0)
	for _, e := range strings.Split(GetString(WebhookEndpointsKey), ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	return endpoints
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

// AllSettings returns the current configuration.
func AllSettings() map[string]interface{} {
	return vip.AllSettings()
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	if _, ok := networks[GetString(NetworkKey)]; !ok {
		return fmt.Errorf(
			"network must be one of '%s', '%s' or '%s'",
			network.Liquid.Name, network.Testnet.Name, network.Regtest.Name,
		)
	}

	dbType := GetString(DbTypeKey)
	if dbType != DbTypeBadger && dbType != DbTypeInMemory {
		return fmt.Errorf(
			"db type must be either '%s' or '%s'", DbTypeBadger, DbTypeInMemory,
		)
	}

	if _, err := GetEscrowParams(); err != nil {
		return err
	}

	if len(GetString(TicketNameKey)) <= 0 {
		return fmt.Errorf("ticket name must not be null")
	}

	for _, key := range []string{
		MinOutputValueKey, FeeBudgetKey, ValidityMarginKey, SlotLengthKey,
		CollateralPercentageKey, WebhookRateLimitKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", strings.ToLower(key))
		}
	}
	if GetInt(FeePerByteKey) < 0 || GetInt(ScriptExecutionFeeKey) < 0 {
		return fmt.Errorf("fees must not be negative")
	}
	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
