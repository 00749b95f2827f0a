package application_test

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
	"github.com/vulpemventures/go-elements/network"
)

const unit = 100000000

var (
	ctx               = context.Background()
	genesis           = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	entitlementPolicy = strings.Repeat("ab", 32)
	entitlementToken  = ledger.Token{
		Policy: entitlementPolicy, Name: "badge", Quantity: 1,
	}
)

type testEnv struct {
	ledger    *emulator.Emulator
	svc       application.EscrowService
	publisher *mockPublisher
	alice     *ports.WalletInfo
	bob       *ports.WalletInfo
}

// newTestEnv funds alice with 20 + 5 units, bob with 10 units and one
// entitlement asset.
func newTestEnv(t *testing.T, params escrow.Params) *testEnv {
	engine := ledger.NewScriptEngine(
		ledger.WithValidator(escrow.ScriptKind, escrow.LoadValidator),
		ledger.WithMintingPolicy(ticket.ScriptKind, ticket.LoadPolicy),
	)
	e, err := emulator.NewEmulator(emulator.Config{
		Network:     &network.Regtest,
		Engine:      engine,
		Repository:  inmemory.NewRepoManager(),
		GenesisTime: genesis,
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)

	alice, err := e.CreateWallet(ctx, "alice")
	require.NoError(t, err)
	bob, err := e.CreateWallet(ctx, "bob")
	require.NoError(t, err)

	for _, v := range []ledger.Value{
		ledger.NewValue(20 * unit), ledger.NewValue(5 * unit),
	} {
		_, err := e.Fund(ctx, alice.Address, v)
		require.NoError(t, err)
	}
	for _, v := range []ledger.Value{
		ledger.NewValue(10 * unit), ledger.NewValue(2000, entitlementToken),
	} {
		_, err := e.Fund(ctx, bob.Address, v)
		require.NoError(t, err)
	}

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	svc, err := application.NewEscrowService(e, publisher, nil, application.Config{
		Network: &network.Regtest,
		Escrow:  params,
	})
	require.NoError(t, err)

	return &testEnv{e, svc, publisher, alice, bob}
}

func (env *testEnv) balance(t *testing.T, address string) ledger.Value {
	balance, err := env.ledger.GetBalance(ctx, address)
	require.NoError(t, err)
	return balance
}

func TestClaimWithEntitlement(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            10 * unit,
		EntitlementPolicy: entitlementPolicy,
	})
	require.NoError(t, err)
	require.Equal(t, uint32(0), handle.OutPoint.VOut)
	require.Equal(t, env.svc.EscrowAddress(), handle.Address)
	require.Equal(t, env.alice.PubKeyHash, handle.Datum.Owner)

	// exactly one ticket exists and it's held by the position.
	ticketName := ticket.DefaultTokenName
	require.Equal(t, uint64(1), handle.Value.QuantityOf(handle.TicketPolicy, ticketName))
	escrowBalance := env.balance(t, handle.Address)
	require.Equal(t, uint64(1), escrowBalance.QuantityOf(handle.TicketPolicy, ticketName))
	require.Zero(t, env.balance(t, env.alice.Address).QuantityOf(handle.TicketPolicy, ticketName))

	position, err := env.svc.GetPosition(ctx, handle.OutPoint)
	require.NoError(t, err)
	require.Equal(t, domain.PositionStatusLocked, position.Status)
	require.Equal(t, handle.TicketPolicy, position.TicketPolicy)

	bobBefore := env.balance(t, env.bob.Address)

	txid, err := env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "bob",
	})
	require.NoError(t, err)
	require.NotEmpty(t, txid)

	// bob got the locked amount minus fees, the entitlement deposit went to
	// the escrow address.
	bobAfter := env.balance(t, env.bob.Address)
	gained := bobAfter.Amount - (bobBefore.Amount - 2000)
	require.Less(t, gained, uint64(10*unit))
	require.Greater(t, gained, uint64(10*unit-20000))
	require.Equal(t, uint64(1), bobAfter.QuantityOf(handle.TicketPolicy, ticketName))
	require.False(t, bobAfter.HasPolicy(entitlementPolicy))

	escrowUtxos, err := env.ledger.GetSpendableOutputs(ctx, handle.Address)
	require.NoError(t, err)
	require.Len(t, escrowUtxos, 1)
	require.True(t, escrowUtxos[0].Value.Equal(ledger.NewValue(2000, entitlementToken)))
	require.Empty(t, escrowUtxos[0].Datum)

	positions, err := env.svc.ListPositions(ctx)
	require.NoError(t, err)
	require.Empty(t, positions)

	// the position can be released only once.
	for _, args := range []application.ReleaseArgs{
		{Position: handle.OutPoint, Redeemer: escrow.Claim, Wallet: "bob"},
		{Position: handle.OutPoint, Redeemer: escrow.Cancel, Wallet: "alice"},
	} {
		_, err := env.svc.Release(ctx, args)
		require.ErrorIs(t, err, application.ErrStaleInputReference)
	}

	calls := env.publisher.topics()
	require.Equal(t, []string{
		application.TopicPositionOpened, application.TopicPositionClaimed,
	}, calls)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(env.publisher.message(1)), &event))
	require.Equal(t, "CLAIMED", event["status"])
	require.Equal(t, txid, event["txid"])
}

func TestClaimWithEntitlementAmongOtherValue(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})
	carol, err := env.ledger.CreateWallet(ctx, "carol")
	require.NoError(t, err)

	badges := entitlementToken
	badges.Quantity = 3
	otherToken := ledger.Token{
		Policy: strings.Repeat("cd", 32), Name: "other", Quantity: 7,
	}
	_, err = env.ledger.Fund(
		ctx, carol.Address, ledger.NewValue(50*unit, badges, otherToken),
	)
	require.NoError(t, err)
	_, err = env.ledger.Fund(ctx, carol.Address, ledger.NewValue(10*unit))
	require.NoError(t, err)

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            10 * unit,
		EntitlementPolicy: entitlementPolicy,
	})
	require.NoError(t, err)

	carolBefore := env.balance(t, carol.Address)
	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "carol",
	})
	require.NoError(t, err)

	// only one entitlement unit and the min output value are retired.
	escrowUtxos, err := env.ledger.GetSpendableOutputs(ctx, handle.Address)
	require.NoError(t, err)
	require.Len(t, escrowUtxos, 1)
	require.True(t, escrowUtxos[0].Value.Equal(ledger.NewValue(2000, entitlementToken)))
	require.Empty(t, escrowUtxos[0].Datum)

	carolAfter := env.balance(t, carol.Address)
	requireClaimPayout(t, carolBefore, carolAfter, 10*unit)
	require.Equal(t, uint64(2), carolAfter.QuantityOf(entitlementPolicy, "badge"))
	require.Equal(t, uint64(7), carolAfter.QuantityOf(otherToken.Policy, otherToken.Name))
	require.Equal(
		t, uint64(1),
		carolAfter.QuantityOf(handle.TicketPolicy, ticket.DefaultTokenName),
	)
}

func TestClaimWithManyEntitlements(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})
	carol, err := env.ledger.CreateWallet(ctx, "carol")
	require.NoError(t, err)

	rich, err := env.ledger.Fund(
		ctx, carol.Address, ledger.NewValue(5*unit, entitlementToken),
	)
	require.NoError(t, err)
	poor, err := env.ledger.Fund(
		ctx, carol.Address, ledger.NewValue(3000, entitlementToken),
	)
	require.NoError(t, err)
	_, err = env.ledger.Fund(ctx, carol.Address, ledger.NewValue(unit))
	require.NoError(t, err)

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            10 * unit,
		EntitlementPolicy: entitlementPolicy,
	})
	require.NoError(t, err)

	carolBefore := env.balance(t, carol.Address)
	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "carol",
	})
	require.NoError(t, err)

	// the entitlement output with less base unit is the one spent.
	utxos, err := env.ledger.GetSpendableOutputs(ctx, carol.Address)
	require.NoError(t, err)
	outpoints := make([]ledger.OutPoint, 0, len(utxos))
	for _, u := range utxos {
		outpoints = append(outpoints, u.OutPoint)
	}
	require.Contains(t, outpoints, rich.OutPoint)
	require.NotContains(t, outpoints, poor.OutPoint)

	carolAfter := env.balance(t, carol.Address)
	requireClaimPayout(t, carolBefore, carolAfter, 10*unit)
	require.Equal(t, uint64(1), carolAfter.QuantityOf(entitlementPolicy, "badge"))
}

// requireClaimPayout checks the claimer gained payout minus the retired
// marker's min value and a fee.
func requireClaimPayout(t *testing.T, before, after ledger.Value, payout uint64) {
	t.Helper()
	expected := before.Amount + payout - 2000
	require.Less(t, after.Amount, expected)
	require.Greater(t, after.Amount, expected-20000)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            10 * unit,
		EntitlementPolicy: entitlementPolicy,
	})
	require.NoError(t, err)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Cancel,
		Wallet:   "bob",
	})
	require.ErrorIs(t, err, application.ErrValidationRejected)
	require.ErrorIs(t, err, escrow.ErrMissingOwnerSignature)

	aliceBefore := env.balance(t, env.alice.Address)
	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Cancel,
		Wallet:   "alice",
	})
	require.NoError(t, err)

	aliceAfter := env.balance(t, env.alice.Address)
	require.Greater(t, aliceAfter.Amount, aliceBefore.Amount+10*unit-20000)
	require.Equal(
		t, uint64(1),
		aliceAfter.QuantityOf(handle.TicketPolicy, ticket.DefaultTokenName),
	)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "bob",
	})
	require.ErrorIs(t, err, application.ErrStaleInputReference)

	require.Equal(t, []string{
		application.TopicPositionOpened, application.TopicPositionCancelled,
	}, env.publisher.topics())
}

func TestClaimWithoutEntitlement(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            10 * unit,
		EntitlementPolicy: entitlementPolicy,
	})
	require.NoError(t, err)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "alice",
	})
	require.ErrorIs(t, err, application.ErrMissingEntitlement)

	// a claim built without entitlement is rejected by the validator.
	position, err := env.svc.GetPosition(ctx, handle.OutPoint)
	require.NoError(t, err)
	now, err := env.ledger.CurrentTime(ctx)
	require.NoError(t, err)
	script, err := escrow.NewScript(escrow.Params{Gate: escrow.PolicyGated})
	require.NoError(t, err)

	draft := ledger.NewTx()
	draft.AddInput(position.OutPoint, escrow.Claim.Bytes())
	draft.AddOutput(env.alice.Address, position.Value, nil)
	draft.Validity = ledger.ValidityWindow{From: now, To: now.Add(time.Minute)}
	draft.AddSigner(env.alice.PubKeyHash)
	draft.AttachScript(script)

	utxos, err := env.ledger.GetSpendableOutputs(ctx, env.alice.Address)
	require.NoError(t, err)
	_, err = env.ledger.FinalizeAndSubmit(ctx, draft, env.alice.Address, utxos)
	require.ErrorIs(t, err, application.ErrValidationRejected)
	require.ErrorIs(t, err, escrow.ErrMissingEntitlement)

	position, err = env.svc.GetPosition(ctx, handle.OutPoint)
	require.NoError(t, err)
	require.True(t, position.IsLocked())
}

func TestIdentityGatedClaim(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.IdentityGated})
	carol, err := env.ledger.CreateWallet(ctx, "carol")
	require.NoError(t, err)
	_, err = env.ledger.Fund(ctx, carol.Address, ledger.NewValue(unit))
	require.NoError(t, err)

	handle, err := env.svc.Open(ctx, application.OpenArgs{
		FundingWallet: "alice",
		Amount:        5 * unit,
		Beneficiary:   env.bob.PubKeyHash,
	})
	require.NoError(t, err)
	require.Equal(t, escrow.IdentityGated, handle.Datum.Gate)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "carol",
	})
	require.ErrorIs(t, err, escrow.ErrMissingBeneficiarySignature)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: handle.OutPoint,
		Redeemer: escrow.Claim,
		Wallet:   "bob",
	})
	require.NoError(t, err)

	// the entitlement asset is not needed and stays with bob.
	require.True(t, env.balance(t, env.bob.Address).HasPolicy(entitlementPolicy))
}

func TestDeadline(t *testing.T) {
	env := newTestEnv(t, escrow.Params{
		Gate:           escrow.PolicyGated,
		DeadlinePolicy: escrow.DeadlineEnforced,
	})
	deadline := genesis.Add(time.Hour)

	open := func() *application.PositionHandle {
		handle, err := env.svc.Open(ctx, application.OpenArgs{
			FundingWallet:     "alice",
			Amount:            2 * unit,
			EntitlementPolicy: entitlementPolicy,
			Deadline:          deadline,
		})
		require.NoError(t, err)
		return handle
	}
	first, second := open(), open()

	_, err := env.svc.Release(ctx, application.ReleaseArgs{
		Position: first.OutPoint, Redeemer: escrow.Claim, Wallet: "bob",
	})
	require.ErrorIs(t, err, escrow.ErrClaimBeforeDeadline)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: first.OutPoint, Redeemer: escrow.Cancel, Wallet: "alice",
	})
	require.NoError(t, err)

	_, err = env.ledger.Tick(ctx, 3600)
	require.NoError(t, err)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: second.OutPoint, Redeemer: escrow.Cancel, Wallet: "alice",
	})
	require.ErrorIs(t, err, escrow.ErrCancelAfterDeadline)

	_, err = env.svc.Release(ctx, application.ReleaseArgs{
		Position: second.OutPoint, Redeemer: escrow.Claim, Wallet: "bob",
	})
	require.NoError(t, err)
}

func TestOpenFailures(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})
	aliceUtxos, err := env.ledger.GetSpendableOutputs(ctx, env.alice.Address)
	require.NoError(t, err)

	tests := []struct {
		name string
		args application.OpenArgs
		err  error
	}{
		{
			name: "amount below min output value",
			args: application.OpenArgs{
				FundingWallet: "alice", Amount: 100,
				EntitlementPolicy: entitlementPolicy,
			},
			err: application.ErrInvalidAmount,
		},
		{
			name: "amount overflowing the fee budget",
			args: application.OpenArgs{
				FundingWallet: "alice", Amount: math.MaxUint64,
				EntitlementPolicy: entitlementPolicy,
			},
			err: application.ErrInvalidAmount,
		},
		{
			name: "unknown wallet",
			args: application.OpenArgs{
				FundingWallet: "dave", Amount: unit,
				EntitlementPolicy: entitlementPolicy,
			},
			err: application.ErrUnknownWallet,
		},
		{
			name: "insufficient funds",
			args: application.OpenArgs{
				FundingWallet: "alice", Amount: 30 * unit,
				EntitlementPolicy: entitlementPolicy,
			},
			err: application.ErrInsufficientFunds,
		},
		{
			name: "funding outpoints can't cover amount",
			args: application.OpenArgs{
				FundingWallet: "alice", Amount: 10 * unit,
				EntitlementPolicy: entitlementPolicy,
				FundingOutpoints:  []ledger.OutPoint{smallest(aliceUtxos).OutPoint},
			},
			err: application.ErrInsufficientFunds,
		},
		{
			name: "missing entitlement policy",
			args: application.OpenArgs{FundingWallet: "alice", Amount: unit},
			err:  escrow.ErrInvalidEntitlementPolicy,
		},
		{
			name: "beneficiary on policy gated escrow",
			args: application.OpenArgs{
				FundingWallet: "alice", Amount: unit,
				EntitlementPolicy: entitlementPolicy,
				Beneficiary:       env.bob.PubKeyHash,
			},
			err: escrow.ErrMixedGate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Open(ctx, tt.args)
			require.ErrorIs(t, err, tt.err)
		})
	}

	// nothing was submitted.
	utxos, err := env.ledger.GetSpendableOutputs(ctx, env.alice.Address)
	require.NoError(t, err)
	require.Equal(t, aliceUtxos, utxos)
	require.Empty(t, env.publisher.topics())
}

func TestOpenWithStaleFundingOutpoints(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})
	aliceUtxos, err := env.ledger.GetSpendableOutputs(ctx, env.alice.Address)
	require.NoError(t, err)
	funding := []ledger.OutPoint{largest(aliceUtxos).OutPoint}

	args := application.OpenArgs{
		FundingWallet:     "alice",
		Amount:            unit,
		EntitlementPolicy: entitlementPolicy,
		FundingOutpoints:  funding,
	}
	handle, err := env.svc.Open(ctx, args)
	require.NoError(t, err)
	policy, err := ticket.NewPolicy(ticket.Params{
		Seed: funding[0], TokenName: ticket.DefaultTokenName,
	})
	require.NoError(t, err)
	require.Equal(t, policy.ID(), handle.TicketPolicy)

	_, err = env.svc.Open(ctx, args)
	require.ErrorIs(t, err, application.ErrStaleInputReference)
}

func TestListPositions(t *testing.T) {
	env := newTestEnv(t, escrow.Params{Gate: escrow.PolicyGated})

	handles := make([]*application.PositionHandle, 0, 2)
	for i := 0; i < 2; i++ {
		handle, err := env.svc.Open(ctx, application.OpenArgs{
			FundingWallet:     "alice",
			Amount:            unit,
			EntitlementPolicy: entitlementPolicy,
		})
		require.NoError(t, err)
		handles = append(handles, handle)
	}
	require.NotEqual(t, handles[0].TicketPolicy, handles[1].TicketPolicy)

	// an output with a valid datum but no claim ticket is not a position.
	datum, err := escrow.NewPolicyGatedDatum(
		env.alice.PubKeyHash, entitlementPolicy, time.Time{},
	)
	require.NoError(t, err)
	rawDatum, err := datum.Encode()
	require.NoError(t, err)
	draft := ledger.NewTx()
	draft.AddOutput(env.svc.EscrowAddress(), ledger.NewValue(unit), rawDatum)
	utxos, err := env.ledger.GetSpendableOutputs(ctx, env.alice.Address)
	require.NoError(t, err)
	txid, err := env.ledger.FinalizeAndSubmit(ctx, draft, env.alice.Address, utxos)
	require.NoError(t, err)

	_, err = env.svc.GetPosition(ctx, ledger.NewOutPoint(txid, 0))
	require.ErrorIs(t, err, domain.ErrPositionMissingTicket)

	positions, err := env.svc.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	for _, p := range positions {
		require.True(t, p.IsLocked())
		require.Equal(t, uint64(unit), p.Value.Amount)
	}
}

func smallest(utxos []ledger.Utxo) ledger.Utxo {
	min := utxos[0]
	for _, u := range utxos {
		if u.Value.Amount < min.Value.Amount {
			min = u
		}
	}
	return min
}

func largest(utxos []ledger.Utxo) ledger.Utxo {
	max := utxos[0]
	for _, u := range utxos {
		if u.Value.Amount > max.Value.Amount {
			max = u
		}
	}
	return max
}
