package ledger

import (
	"errors"
	"fmt"
)

// Validator decides whether an output locked by its script may be spent.
// A nil error means the spend is admitted.
type Validator interface {
	Validate(datum, redeemer []byte, ctx *ScriptContext) error
}

// MintingPolicy decides whether tokens may be minted or burned under its
// policy id.
type MintingPolicy interface {
	ValidateMint(redeemer []byte, ctx *ScriptContext) error
}

// ValidatorLoader instantiates a validator from its serialized params.
type ValidatorLoader func(params []byte) (Validator, error)

// PolicyLoader instantiates a minting policy from its serialized params.
type PolicyLoader func(params []byte) (MintingPolicy, error)

// ScriptEngine evaluates scripts by dispatching on their kind to the
// registered loaders.
type ScriptEngine struct {
	validators map[string]ValidatorLoader
	policies   map[string]PolicyLoader
}

type EngineOption func(*ScriptEngine)

func WithValidator(kind string, loader ValidatorLoader) EngineOption {
	return func(e *ScriptEngine) {
		e.validators[kind] = loader
	}
}

func WithMintingPolicy(kind string, loader PolicyLoader) EngineOption {
	return func(e *ScriptEngine) {
		e.policies[kind] = loader
	}
}

func NewScriptEngine(opts ...EngineOption) *ScriptEngine {
	e := &ScriptEngine{
		validators: make(map[string]ValidatorLoader),
		policies:   make(map[string]PolicyLoader),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvalSpend runs the validator identified by script against the given
// datum, redeemer and context. Every failure wraps ErrValidationRejected.
func (e *ScriptEngine) EvalSpend(
	script Script, datum, redeemer []byte, ctx *ScriptContext,
) error {
	load, ok := e.validators[script.Kind]
	if !ok {
		return fmt.Errorf(
			"%w: %w %q", ErrValidationRejected, ErrUnknownScriptKind, script.Kind,
		)
	}
	validator, err := load(script.Params)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationRejected, err)
	}
	if err := validator.Validate(datum, redeemer, ctx); err != nil {
		return wrapRejection(err)
	}
	return nil
}

// EvalMint runs the minting policy identified by script.
func (e *ScriptEngine) EvalMint(
	script Script, redeemer []byte, ctx *ScriptContext,
) error {
	load, ok := e.policies[script.Kind]
	if !ok {
		return fmt.Errorf(
			"%w: %w %q", ErrValidationRejected, ErrUnknownScriptKind, script.Kind,
		)
	}
	policy, err := load(script.Params)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidationRejected, err)
	}
	if err := policy.ValidateMint(redeemer, ctx); err != nil {
		return wrapRejection(err)
	}
	return nil
}

func wrapRejection(err error) error {
	if errors.Is(err, ErrValidationRejected) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrValidationRejected, err)
}
