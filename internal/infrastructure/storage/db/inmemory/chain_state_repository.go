package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-escrow/internal/infrastructure/ledger/emulator"
)

type ChainStateRepositoryImpl struct {
	state *emulator.ChainState
	lock  *sync.RWMutex
}

func NewChainStateRepositoryImpl() *ChainStateRepositoryImpl {
	return &ChainStateRepositoryImpl{lock: &sync.RWMutex{}}
}

func (r *ChainStateRepositoryImpl) GetChainState(
	_ context.Context,
) (*emulator.ChainState, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.state == nil {
		return nil, nil
	}
	state := *r.state
	return &state, nil
}

func (r *ChainStateRepositoryImpl) UpdateChainState(
	_ context.Context, state emulator.ChainState,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.state = &state
	return nil
}
