package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

const precision = 8

// parseAmount converts an amount of units with up to 8 decimals into base
// unit.
func parseAmount(str string) (uint64, error) {
	amount, err := decimal.NewFromString(str)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", str, err)
	}
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	if amount.Exponent() < -precision {
		return 0, fmt.Errorf("amount must have at most %d decimals", precision)
	}
	baseUnits := amount.Shift(precision).BigInt()
	if !baseUnits.IsUint64() {
		return 0, fmt.Errorf("amount %s is too large", str)
	}
	return baseUnits.Uint64(), nil
}

func formatAmount(amount uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(amount), -precision,
	).StringFixed(precision)
}

// parseToken parses a token in the form policy:name:quantity.
func parseToken(str string) (ledger.Token, error) {
	parts := strings.Split(str, ":")
	if len(parts) != 3 {
		return ledger.Token{}, fmt.Errorf(
			"invalid token %q, must be in the form policy:name:quantity", str,
		)
	}
	quantity, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || quantity == 0 {
		return ledger.Token{}, fmt.Errorf("invalid token quantity %q", parts[2])
	}
	return ledger.Token{Policy: parts[0], Name: parts[1], Quantity: quantity}, nil
}

type tokenInfo struct {
	Policy   string `json:"policy"`
	Name     string `json:"name"`
	Quantity uint64 `json:"quantity"`
}

type valueInfo struct {
	Amount string      `json:"amount"`
	Tokens []tokenInfo `json:"tokens,omitempty"`
}

func newValueInfo(v ledger.Value) valueInfo {
	tokens := make([]tokenInfo, 0, len(v.Tokens))
	for _, t := range v.Tokens {
		tokens = append(tokens, tokenInfo{t.Policy, t.Name, t.Quantity})
	}
	return valueInfo{formatAmount(v.Amount), tokens}
}
