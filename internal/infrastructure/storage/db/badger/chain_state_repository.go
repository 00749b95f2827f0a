package dbbadger

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
	"github.com/timshannon/badgerhold/v4"
)

const chainStateKey = "chainstate"

type chainStateRepositoryImpl struct {
	store *badgerhold.Store
}

func NewChainStateRepositoryImpl(
	store *badgerhold.Store,
) emulator.ChainStateRepository {
	return &chainStateRepositoryImpl{store}
}

func (r *chainStateRepositoryImpl) GetChainState(
	_ context.Context,
) (*emulator.ChainState, error) {
	var state emulator.ChainState
	if err := r.store.Get(chainStateKey, &state); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *chainStateRepositoryImpl) UpdateChainState(
	_ context.Context, state emulator.ChainState,
) error {
	return r.store.Upsert(chainStateKey, state)
}
