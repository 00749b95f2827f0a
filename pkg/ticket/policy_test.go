package ticket_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
)

var (
	seed  = ledger.NewOutPoint(fmt.Sprintf("%064x", 1), 0)
	other = ledger.NewOutPoint(fmt.Sprintf("%064x", 2), 1)
)

func TestPolicyID(t *testing.T) {
	p1 := newTestPolicy(t, seed, ticket.DefaultTokenName)
	p2 := newTestPolicy(t, seed, ticket.DefaultTokenName)
	p3 := newTestPolicy(t, other, ticket.DefaultTokenName)
	p4 := newTestPolicy(t, seed, "Another Ticket")

	require.Equal(t, p1.ID(), p2.ID())
	require.NotEqual(t, p1.ID(), p3.ID())
	require.NotEqual(t, p1.ID(), p4.ID())
	require.Equal(t, p1.ID(), p1.Mint().Policy)
	require.Equal(t, p1.ID(), p1.Token().Policy)

	loaded, err := ticket.LoadPolicy(p1.Script().Params)
	require.NoError(t, err)
	require.Equal(t, p1, loaded)

	_, err = ticket.NewPolicy(ticket.Params{Seed: seed})
	require.ErrorIs(t, err, ticket.ErrEmptyTokenName)
	_, err = ticket.NewPolicy(ticket.Params{TokenName: "x"})
	require.ErrorIs(t, err, ticket.ErrInvalidSeed)
	_, err = ticket.LoadPolicy([]byte{1, 2})
	require.Error(t, err)
}

func TestValidateMint(t *testing.T) {
	policy := newTestPolicy(t, seed, ticket.DefaultTokenName)
	id := policy.ID()

	tests := []struct {
		name   string
		inputs []ledger.OutPoint
		mints  []ledger.Mint
		err    error
	}{
		{
			name:   "valid",
			inputs: []ledger.OutPoint{other, seed},
			mints:  []ledger.Mint{policy.Mint()},
		},
		{
			name:   "valid with mints under other policies",
			inputs: []ledger.OutPoint{seed},
			mints: []ledger.Mint{
				policy.Mint(), {Policy: "other", Name: "x", Quantity: 5},
			},
		},
		{
			name:   "missing seed",
			inputs: []ledger.OutPoint{other},
			mints:  []ledger.Mint{policy.Mint()},
			err:    ticket.ErrMissingSeed,
		},
		{
			name:   "two tickets",
			inputs: []ledger.OutPoint{seed},
			mints:  []ledger.Mint{{Policy: id, Name: ticket.DefaultTokenName, Quantity: 2}},
			err:    ticket.ErrInvalidMint,
		},
		{
			name:   "two tickets in separate entries",
			inputs: []ledger.OutPoint{seed},
			mints:  []ledger.Mint{policy.Mint(), policy.Mint()},
			err:    ticket.ErrInvalidMint,
		},
		{
			name:   "burn",
			inputs: []ledger.OutPoint{seed},
			mints:  []ledger.Mint{{Policy: id, Name: ticket.DefaultTokenName, Quantity: -1}},
			err:    ticket.ErrInvalidMint,
		},
		{
			name:   "wrong name",
			inputs: []ledger.OutPoint{seed},
			mints:  []ledger.Mint{{Policy: id, Name: "other", Quantity: 1}},
			err:    ticket.ErrInvalidMint,
		},
		{
			name:   "extra name",
			inputs: []ledger.OutPoint{seed},
			mints: []ledger.Mint{
				policy.Mint(), {Policy: id, Name: "extra", Quantity: 1},
			},
			err: ticket.ErrInvalidMint,
		},
		{
			name:   "nothing minted",
			inputs: []ledger.OutPoint{seed},
			err:    ticket.ErrInvalidMint,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tx := ledger.NewTx()
			for _, in := range tt.inputs {
				tx.AddInput(in, nil)
			}
			for _, m := range tt.mints {
				tx.AddMint(m)
			}
			ctx := ledger.NewMintingContext(tx, nil, id)

			err := policy.ValidateMint(nil, ctx)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
			require.ErrorIs(t, err, ledger.ErrValidationRejected)
		})
	}
}

func newTestPolicy(t *testing.T, seed ledger.OutPoint, name string) *ticket.Policy {
	p, err := ticket.NewPolicy(ticket.Params{Seed: seed, TokenName: name})
	require.NoError(t, err)
	return p
}
