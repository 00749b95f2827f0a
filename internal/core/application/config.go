package application

import (
	"errors"
	"time"

	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
	"github.com/vulpemventures/go-elements/network"
)

const (
	DefaultMinOutputValue = 2000
	DefaultFeeBudget      = 10000
	DefaultValidityMargin = 100 * time.Second
)

// Config holds the parameters shared by every position managed by the
// escrow service.
type Config struct {
	Network *network.Network
	// Escrow instantiates the validator, hence the escrow address.
	Escrow     escrow.Params
	TicketName string
	// MinOutputValue is the min amount of base unit a position must lock. It
	// is also the amount held by a retired entitlement marker.
	MinOutputValue uint64
	// FeeBudget is the amount reserved for fees when selecting the funding
	// outputs of a position.
	FeeBudget uint64
	// ValidityMargin is the length of the validity window of a release.
	ValidityMargin time.Duration
}

func (c *Config) validate() error {
	if c.Network == nil {
		return errors.New("network must not be null")
	}
	if _, err := escrow.NewScript(c.Escrow); err != nil {
		return err
	}
	if c.ValidityMargin < 0 {
		return errors.New("validity margin must not be negative")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.TicketName == "" {
		c.TicketName = ticket.DefaultTokenName
	}
	if c.MinOutputValue == 0 {
		c.MinOutputValue = DefaultMinOutputValue
	}
	if c.FeeBudget == 0 {
		c.FeeBudget = DefaultFeeBudget
	}
	if c.ValidityMargin == 0 {
		c.ValidityMargin = DefaultValidityMargin
	}
}
