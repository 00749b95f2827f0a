package emulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/wallet"
	"github.com/thanhpk/randstr"
)

// Emulator is an in-process ledger: it holds wallets and the UTXO set,
// keeps a slotted clock, balances and signs transactions and validates them
// before applying them atomically.
type Emulator struct {
	cfg  Config
	repo RepoManager

	lock *sync.Mutex
}

func NewEmulator(cfg Config) (*Emulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	ctx := context.Background()
	state, err := cfg.Repository.ChainStateRepository().GetChainState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		err := cfg.Repository.ChainStateRepository().UpdateChainState(
			ctx, ChainState{GenesisTime: cfg.GenesisTime},
		)
		if err != nil {
			return nil, err
		}
	}

	return &Emulator{
		cfg:  cfg,
		repo: cfg.Repository,
		lock: &sync.Mutex{},
	}, nil
}

func (e *Emulator) Close() {
	e.repo.Close()
}

// CreateWallet generates a new key pair for the given name.
func (e *Emulator) CreateWallet(
	ctx context.Context, name string,
) (*ports.WalletInfo, error) {
	if name == "" {
		return nil, ErrEmptyWalletName
	}
	w, err := wallet.NewWallet()
	if err != nil {
		return nil, err
	}
	addr, err := w.Address(e.cfg.Network)
	if err != nil {
		return nil, err
	}

	record := Wallet{
		Name:       name,
		PrivateKey: w.PrivateKey(),
		Address:    addr,
		PubKeyHash: w.PubKeyHash(),
	}
	if err := e.repo.WalletRepository().AddWallet(ctx, record); err != nil {
		return nil, err
	}

	log.WithField("name", name).Debug("emulator: created wallet")
	return walletInfo(record), nil
}

func (e *Emulator) GetWallet(
	ctx context.Context, name string,
) (*ports.WalletInfo, error) {
	w, err := e.repo.WalletRepository().GetWallet(ctx, name)
	if err != nil {
		return nil, err
	}
	return walletInfo(*w), nil
}

func (e *Emulator) ListWallets(ctx context.Context) ([]ports.WalletInfo, error) {
	wallets, err := e.repo.WalletRepository().ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]ports.WalletInfo, 0, len(wallets))
	for _, w := range wallets {
		infos = append(infos, *walletInfo(w))
	}
	return infos, nil
}

// Fund creates out of thin air an output locked at address with the given
// value, tokens included.
func (e *Emulator) Fund(
	ctx context.Context, address string, value ledger.Value,
) (*ledger.Utxo, error) {
	if value.IsZero() {
		return nil, ErrZeroValue
	}
	if _, err := ledger.DecodeAddress(address); err != nil {
		return nil, err
	}

	utxo := ledger.Utxo{
		OutPoint: ledger.NewOutPoint(randstr.Hex(64), 0),
		Output:   ledger.Output{Address: address, Value: value},
	}
	if _, err := e.repo.UtxoRepository().AddUtxos(
		ctx, []ledger.Utxo{utxo},
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"outpoint": utxo.OutPoint.String(),
		"value":    value.String(),
	}).Debug("emulator: funded address")
	return &utxo, nil
}

func (e *Emulator) GetSpendableOutputs(
	ctx context.Context, address string,
) ([]ledger.Utxo, error) {
	return e.repo.UtxoRepository().GetSpendableUtxos(ctx, address)
}

// GetBalance returns the total value locked at address.
func (e *Emulator) GetBalance(
	ctx context.Context, address string,
) (ledger.Value, error) {
	utxos, err := e.GetSpendableOutputs(ctx, address)
	if err != nil {
		return ledger.Value{}, err
	}
	var balance ledger.Value
	for _, u := range utxos {
		balance = balance.Add(u.Value)
	}
	return balance, nil
}

func (e *Emulator) CurrentSlot(ctx context.Context) (uint64, error) {
	state, err := e.chainState(ctx)
	if err != nil {
		return 0, err
	}
	return state.Slot, nil
}

func (e *Emulator) CurrentTime(ctx context.Context) (time.Time, error) {
	state, err := e.chainState(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return e.slotTime(state), nil
}

// Tick advances the clock by the given number of slots and returns the
// new ledger time.
func (e *Emulator) Tick(ctx context.Context, slots uint64) (time.Time, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	state, err := e.chainState(ctx)
	if err != nil {
		return time.Time{}, err
	}
	state.Slot += slots
	if err := e.repo.ChainStateRepository().UpdateChainState(
		ctx, *state,
	); err != nil {
		return time.Time{}, err
	}
	return e.slotTime(state), nil
}

// FinalizeAndSubmit balances, signs and submits the draft.
func (e *Emulator) FinalizeAndSubmit(
	ctx context.Context, draft *ledger.Tx,
	changeAddress string, extraFeeSources []ledger.Utxo,
) (string, error) {
	tx, err := e.Finalize(ctx, draft, changeAddress, extraFeeSources)
	if err != nil {
		return "", err
	}
	return e.Submit(ctx, tx)
}

// Submit validates the transaction against the ledger rules and its scripts
// and, if accepted, applies it to the UTXO set. Nothing is applied if any
// check fails.
func (e *Emulator) Submit(ctx context.Context, tx *ledger.Tx) (string, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	txid, err := tx.ID()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ledger.ErrValidationRejected, err)
	}

	resolved, err := e.resolveInputs(ctx, tx.Inputs)
	if err != nil {
		return "", err
	}
	if err := e.validateTx(ctx, tx, resolved); err != nil {
		log.WithError(err).WithField("txid", txid).Debug("emulator: tx rejected")
		return "", err
	}

	spent := make([]ledger.OutPoint, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		spent = append(spent, in.OutPoint)
	}
	created := make([]ledger.Utxo, 0, len(tx.Outputs))
	for i, out := range tx.Outputs {
		created = append(created, ledger.Utxo{
			OutPoint: ledger.NewOutPoint(txid, uint32(i)),
			Output:   out,
		})
	}
	if err := e.repo.UtxoRepository().ApplyTx(ctx, txid, spent, created); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"txid":    txid,
		"inputs":  len(tx.Inputs),
		"outputs": len(tx.Outputs),
		"fee":     tx.Fee,
	}).Debug("emulator: tx accepted")
	return txid, nil
}

func (e *Emulator) resolveInputs(
	ctx context.Context, inputs []ledger.Input,
) ([]ledger.Utxo, error) {
	resolved := make([]ledger.Utxo, 0, len(inputs))
	for _, in := range inputs {
		utxo, err := e.getUtxo(ctx, in.OutPoint)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *utxo)
	}
	return resolved, nil
}

func (e *Emulator) getUtxo(
	ctx context.Context, outpoint ledger.OutPoint,
) (*ledger.Utxo, error) {
	utxo, err := e.repo.UtxoRepository().GetUtxo(ctx, outpoint)
	if err != nil {
		if errors.Is(err, ErrUtxoNotFound) {
			return nil, fmt.Errorf(
				"%w: %s", ledger.ErrStaleInputReference, outpoint,
			)
		}
		return nil, err
	}
	return utxo, nil
}

func (e *Emulator) chainState(ctx context.Context) (*ChainState, error) {
	state, err := e.repo.ChainStateRepository().GetChainState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("chain state not initialized")
	}
	return state, nil
}

func (e *Emulator) slotTime(state *ChainState) time.Time {
	return state.GenesisTime.Add(time.Duration(state.Slot) * e.cfg.SlotLength)
}

func walletInfo(w Wallet) *ports.WalletInfo {
	return &ports.WalletInfo{
		Name:       w.Name,
		Address:    w.Address,
		PubKeyHash: w.PubKeyHash,
	}
}
