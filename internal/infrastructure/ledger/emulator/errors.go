package emulator

import "errors"

var (
	// ErrWalletNotFound is returned when looking up an unknown wallet.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletExists is returned when creating a wallet with a name already
	// in use.
	ErrWalletExists = errors.New("wallet already exists")
	// ErrUtxoNotFound is returned when looking up an output that is spent or
	// never existed.
	ErrUtxoNotFound = errors.New("utxo not found")
	// ErrNullRepoManager is returned when creating an emulator without
	// repositories.
	ErrNullRepoManager = errors.New("repo manager must not be null")
	// ErrNullScriptEngine is returned when creating an emulator without
	// script engine.
	ErrNullScriptEngine = errors.New("script engine must not be null")
	// ErrNullNetwork is returned when creating an emulator without network.
	ErrNullNetwork = errors.New("network must not be null")
	// ErrInvalidSlotLength is returned for non positive slot lengths.
	ErrInvalidSlotLength = errors.New("slot length must be positive")
	// ErrEmptyWalletName is returned when creating a wallet without name.
	ErrEmptyWalletName = errors.New("wallet name must not be empty")
	// ErrZeroValue is returned when funding an address with an empty value.
	ErrZeroValue = errors.New("value must not be zero")
)

// ErrMissingCollateral is returned when finalizing a transaction that runs
// scripts without any output eligible as collateral.
var ErrMissingCollateral = errors.New("no output eligible as collateral")
