package emulator

import (
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/vulpemventures/go-elements/network"
)

const (
	DefaultSlotLength           = time.Second
	DefaultFeePerByte           = 1
	DefaultScriptExecutionFee   = 1000
	DefaultMinOutputValue       = 2000
	DefaultCollateralPercentage = 150
)

// Config holds the ledger parameters of the emulator.
type Config struct {
	Network    *network.Network
	Engine     *ledger.ScriptEngine
	Repository RepoManager

	// GenesisTime is the time of slot 0 for a fresh chain state. It defaults
	// to the current time.
	GenesisTime time.Time
	SlotLength  time.Duration
	// FeePerByte is the fee paid for each virtual byte of a transaction.
	FeePerByte uint64
	// ScriptExecutionFee is the fee paid for each script evaluated by a
	// transaction.
	ScriptExecutionFee uint64
	// MinOutputValue is the minimum amount of base unit every output must
	// hold.
	MinOutputValue uint64
	// CollateralPercentage is the share of the fee, in percent, the
	// collateral of a transaction running scripts must cover.
	CollateralPercentage uint64
}

func (c *Config) validate() error {
	if c.Network == nil {
		return ErrNullNetwork
	}
	if c.Engine == nil {
		return ErrNullScriptEngine
	}
	if c.Repository == nil {
		return ErrNullRepoManager
	}
	if c.SlotLength < 0 {
		return ErrInvalidSlotLength
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.SlotLength == 0 {
		c.SlotLength = DefaultSlotLength
	}
	if c.GenesisTime.IsZero() {
		c.GenesisTime = time.Now().UTC().Truncate(time.Second)
	}
	if c.FeePerByte == 0 {
		c.FeePerByte = DefaultFeePerByte
	}
	if c.ScriptExecutionFee == 0 {
		c.ScriptExecutionFee = DefaultScriptExecutionFee
	}
	if c.MinOutputValue == 0 {
		c.MinOutputValue = DefaultMinOutputValue
	}
	if c.CollateralPercentage == 0 {
		c.CollateralPercentage = DefaultCollateralPercentage
	}
}
