package application_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
)

// **** Ledger ****

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetWallet(
	ctx context.Context, name string,
) (*ports.WalletInfo, error) {
	args := m.Called(ctx, name)

	var res *ports.WalletInfo
	if a := args.Get(0); a != nil {
		res = a.(*ports.WalletInfo)
	}
	return res, args.Error(1)
}

func (m *mockLedger) GetSpendableOutputs(
	ctx context.Context, address string,
) ([]ledger.Utxo, error) {
	args := m.Called(ctx, address)

	var res []ledger.Utxo
	if a := args.Get(0); a != nil {
		res = a.([]ledger.Utxo)
	}
	return res, args.Error(1)
}

func (m *mockLedger) CurrentTime(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)

	var res time.Time
	if a := args.Get(0); a != nil {
		res = a.(time.Time)
	}
	return res, args.Error(1)
}

func (m *mockLedger) FinalizeAndSubmit(
	ctx context.Context, draft *ledger.Tx,
	changeAddress string, extraFeeSources []ledger.Utxo,
) (string, error) {
	args := m.Called(ctx, draft, changeAddress, extraFeeSources)
	return args.String(0), args.Error(1)
}

// **** Publisher ****

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(topic string, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}

func (m *mockPublisher) topics() []string {
	topics := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		topics = append(topics, c.Arguments.String(0))
	}
	return topics
}

func (m *mockPublisher) message(i int) string {
	return m.Calls[i].Arguments.String(1)
}
