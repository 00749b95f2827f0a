package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/tdex-network/tdex-escrow/pkg/ticket"
)

type EscrowService interface {
	// Open locks funds of a wallet at the escrow address together with a
	// newly minted claim ticket.
	Open(ctx context.Context, args OpenArgs) (*PositionHandle, error)
	// Release spends a locked position with a Cancel or a Claim and pays its
	// value to the spending wallet. It returns the id of the release tx.
	Release(ctx context.Context, args ReleaseArgs) (string, error)
	GetPosition(
		ctx context.Context, outpoint ledger.OutPoint,
	) (*domain.Position, error)
	ListPositions(ctx context.Context) ([]domain.Position, error)
	EscrowAddress() string
}

type escrowService struct {
	ledgerSvc ports.LedgerService
	publisher ports.EventPublisher
	metrics   *Metrics
	cfg       Config

	validator     ledger.Script
	escrowAddress string
}

// NewEscrowService returns the service operating positions on the given
// ledger. The publisher and the metrics are optional.
func NewEscrowService(
	ledgerSvc ports.LedgerService,
	publisher ports.EventPublisher,
	metrics *Metrics,
	cfg Config,
) (EscrowService, error) {
	return newEscrowService(ledgerSvc, publisher, metrics, cfg)
}

func newEscrowService(
	ledgerSvc ports.LedgerService,
	publisher ports.EventPublisher,
	metrics *Metrics,
	cfg Config,
) (*escrowService, error) {
	if ledgerSvc == nil {
		return nil, ErrNullLedgerService
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	validator, err := escrow.NewScript(cfg.Escrow)
	if err != nil {
		return nil, err
	}
	escrowAddress, err := validator.Address(cfg.Network)
	if err != nil {
		return nil, err
	}

	return &escrowService{
		ledgerSvc:     ledgerSvc,
		publisher:     publisher,
		metrics:       metrics,
		cfg:           cfg,
		validator:     validator,
		escrowAddress: escrowAddress,
	}, nil
}

func (s *escrowService) EscrowAddress() string {
	return s.escrowAddress
}

func (s *escrowService) Open(
	ctx context.Context, args OpenArgs,
) (*PositionHandle, error) {
	logger := log.WithFields(log.Fields{
		"op_id":     uuid.New().String(),
		"operation": "open",
		"wallet":    args.FundingWallet,
		"amount":    args.Amount,
	})

	position, err := s.open(ctx, args, logger)
	if err != nil {
		s.metrics.ObserveFailure("open")
		logger.WithError(err).Warn("escrow: open failed")
		return nil, err
	}

	s.metrics.ObserveOpened()
	s.publish(TopicPositionOpened, position, logger)
	logger.WithField("outpoint", position.OutPoint.String()).Info(
		"escrow: position locked",
	)
	return newPositionHandle(position), nil
}

func (s *escrowService) open(
	ctx context.Context, args OpenArgs, logger *log.Entry,
) (*domain.Position, error) {
	if args.Amount < s.cfg.MinOutputValue {
		return nil, fmt.Errorf(
			"%w: %d < %d", ErrInvalidAmount, args.Amount, s.cfg.MinOutputValue,
		)
	}

	if args.Amount > math.MaxUint64-s.cfg.FeeBudget {
		return nil, fmt.Errorf(
			"%w: %d exceeds the max lockable amount", ErrInvalidAmount, args.Amount,
		)
	}

	funder, err := s.getWallet(ctx, args.FundingWallet)
	if err != nil {
		return nil, err
	}
	datum, err := s.newDatum(funder.PubKeyHash, args)
	if err != nil {
		return nil, err
	}
	rawDatum, err := datum.Encode()
	if err != nil {
		return nil, err
	}

	utxos, err := s.ledgerSvc.GetSpendableOutputs(ctx, funder.Address)
	if err != nil {
		return nil, err
	}
	selected, err := s.selectFundingUtxos(utxos, args)
	if err != nil {
		return nil, err
	}

	policy, err := ticket.NewPolicy(ticket.Params{
		Seed:      selected[0].OutPoint,
		TokenName: s.cfg.TicketName,
	})
	if err != nil {
		return nil, err
	}
	if datum.Gate == escrow.PolicyGated &&
		datum.EntitlementPolicy == policy.ID() {
		return nil, ErrTicketAsEntitlement
	}

	value := ledger.NewValue(args.Amount, policy.Token())
	position, err := domain.NewPosition(
		s.escrowAddress, *datum, value, policy.ID(),
	)
	if err != nil {
		return nil, err
	}

	draft := ledger.NewTx()
	for _, u := range selected {
		draft.AddInput(u.OutPoint, nil)
	}
	draft.AddMint(policy.Mint())
	draft.AddOutput(s.escrowAddress, value, rawDatum)
	draft.AttachScript(s.validator)
	draft.AttachScript(policy.Script())

	feeSources := make([]ledger.Utxo, 0, len(utxos))
	for _, u := range utxos {
		if !u.Value.HasTokens() && !draft.SpendsOutPoint(u.OutPoint) {
			feeSources = append(feeSources, u)
		}
	}

	logger.WithFields(log.Fields{
		"inputs":        len(selected),
		"ticket_policy": policy.ID(),
	}).Debug("escrow: submitting open tx")

	txid, err := s.ledgerSvc.FinalizeAndSubmit(
		ctx, draft, funder.Address, feeSources,
	)
	if err != nil {
		return nil, err
	}

	if err := position.Lock(ledger.NewOutPoint(txid, 0)); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *escrowService) Release(
	ctx context.Context, args ReleaseArgs,
) (string, error) {
	logger := log.WithFields(log.Fields{
		"op_id":     uuid.New().String(),
		"operation": "release",
		"wallet":    args.Wallet,
		"position":  args.Position.String(),
		"redeemer":  args.Redeemer.String(),
	})

	position, err := s.release(ctx, args, logger)
	if err != nil {
		s.metrics.ObserveFailure("release")
		logger.WithError(err).Warn("escrow: release failed")
		return "", err
	}

	s.metrics.ObserveReleased(args.Redeemer.String())
	topic := TopicPositionCancelled
	if args.Redeemer == escrow.Claim {
		topic = TopicPositionClaimed
	}
	s.publish(topic, position, logger)
	logger.WithField("txid", position.ReleaseTxID).Info(
		"escrow: position released",
	)
	return position.ReleaseTxID, nil
}

func (s *escrowService) release(
	ctx context.Context, args ReleaseArgs, logger *log.Entry,
) (*domain.Position, error) {
	if args.Redeemer != escrow.Cancel && args.Redeemer != escrow.Claim {
		return nil, domain.ErrUnknownRedeemer
	}

	spender, err := s.getWallet(ctx, args.Wallet)
	if err != nil {
		return nil, err
	}
	position, err := s.GetPosition(ctx, args.Position)
	if err != nil {
		return nil, err
	}

	utxos, err := s.ledgerSvc.GetSpendableOutputs(ctx, spender.Address)
	if err != nil {
		return nil, err
	}

	var entitlement *ledger.Utxo
	if args.Redeemer == escrow.Claim && position.Datum.Gate == escrow.PolicyGated {
		entitlement = findEntitlement(utxos, position.Datum.EntitlementPolicy)
		if entitlement == nil {
			return nil, fmt.Errorf(
				"%w: policy %s", ErrMissingEntitlement,
				position.Datum.EntitlementPolicy,
			)
		}
	}

	collateral, feeSources := selectCollateral(utxos)
	if collateral == nil {
		return nil, ErrMissingCollateral
	}

	window, err := s.validityWindow(ctx, position.Datum, args.Redeemer)
	if err != nil {
		return nil, err
	}

	draft := ledger.NewTx()
	if entitlement != nil {
		draft.AddInput(entitlement.OutPoint, nil)
	}
	draft.AddInput(position.OutPoint, args.Redeemer.Bytes())
	draft.AddOutput(spender.Address, position.Value, nil)
	if entitlement != nil {
		// retired marker: an output without datum can never be spent. The
		// rest of the entitlement output goes back as change.
		marker := retiredEntitlement(
			*entitlement, position.Datum.EntitlementPolicy, s.cfg.MinOutputValue,
		)
		draft.AddOutput(s.escrowAddress, marker, nil)
	}
	draft.Validity = window
	draft.AddSigner(spender.PubKeyHash)
	draft.AttachScript(s.validator)
	draft.AddCollateral(collateral.OutPoint)

	logger.WithFields(log.Fields{
		"collateral":  collateral.OutPoint.String(),
		"valid_from":  window.From,
		"valid_to":    window.To,
		"entitlement": entitlement != nil,
	}).Debug("escrow: submitting release tx")

	txid, err := s.ledgerSvc.FinalizeAndSubmit(
		ctx, draft, spender.Address, feeSources,
	)
	if err != nil {
		return nil, err
	}

	if err := position.Release(args.Redeemer, txid); err != nil {
		return nil, err
	}
	return position, nil
}

// GetPosition returns the locked position with the given outpoint.
func (s *escrowService) GetPosition(
	ctx context.Context, outpoint ledger.OutPoint,
) (*domain.Position, error) {
	utxos, err := s.ledgerSvc.GetSpendableOutputs(ctx, s.escrowAddress)
	if err != nil {
		return nil, err
	}
	for _, u := range utxos {
		if u.OutPoint == outpoint {
			return domain.NewPositionFromUtxo(u, s.cfg.TicketName)
		}
	}
	return nil, fmt.Errorf(
		"%w: position %s not found", ErrStaleInputReference, outpoint,
	)
}

// ListPositions returns all positions locked at the escrow address. Retired
// markers and outputs with invalid datum or no claim ticket are skipped.
func (s *escrowService) ListPositions(
	ctx context.Context,
) ([]domain.Position, error) {
	utxos, err := s.ledgerSvc.GetSpendableOutputs(ctx, s.escrowAddress)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(utxos))
	for _, u := range utxos {
		position, err := domain.NewPositionFromUtxo(u, s.cfg.TicketName)
		if err != nil {
			if !errors.Is(err, domain.ErrPositionMissingDatum) {
				log.WithError(err).WithField("outpoint", u.OutPoint.String()).
					Debug("escrow: skipping output at escrow address")
			}
			continue
		}
		positions = append(positions, *position)
	}
	return positions, nil
}

func (s *escrowService) getWallet(
	ctx context.Context, name string,
) (*ports.WalletInfo, error) {
	w, err := s.ledgerSvc.GetWallet(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrUnknownWallet, name, err)
	}
	return w, nil
}

func (s *escrowService) newDatum(
	owner string, args OpenArgs,
) (*escrow.Datum, error) {
	if s.cfg.Escrow.Gate == escrow.IdentityGated {
		return escrow.NewIdentityGatedDatum(owner, args.Beneficiary, args.Deadline)
	}
	return escrow.NewPolicyGatedDatum(
		owner, args.EntitlementPolicy, args.Deadline,
	)
}

// selectFundingUtxos returns the outputs funding a position: the given
// funding outpoints, if any, otherwise a coin selection among the outputs
// without tokens.
func (s *escrowService) selectFundingUtxos(
	utxos []ledger.Utxo, args OpenArgs,
) ([]ledger.Utxo, error) {
	target := args.Amount + s.cfg.FeeBudget

	if len(args.FundingOutpoints) <= 0 {
		coins, _, err := ledger.SelectUtxos(utxos, target)
		if err != nil {
			return nil, err
		}
		return coins, nil
	}

	byOutpoint := make(map[ledger.OutPoint]ledger.Utxo, len(utxos))
	for _, u := range utxos {
		byOutpoint[u.OutPoint] = u
	}

	selected := make([]ledger.Utxo, 0, len(args.FundingOutpoints))
	seen := make(map[ledger.OutPoint]struct{})
	var total uint64
	for _, op := range args.FundingOutpoints {
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}

		u, ok := byOutpoint[op]
		if !ok {
			return nil, fmt.Errorf(
				"%w: funding outpoint %s", ErrStaleInputReference, op,
			)
		}
		selected = append(selected, u)
		total += u.Value.Amount
	}
	if total < target {
		return nil, fmt.Errorf(
			"%w: funding outpoints hold %d, required %d",
			ErrInsufficientFunds, total, target,
		)
	}
	return selected, nil
}

// validityWindow returns the window [now, now+margin) of a release. When
// the validator enforces the datum deadline, a Cancel window ends at the
// deadline and a Claim is refused before it.
func (s *escrowService) validityWindow(
	ctx context.Context, datum escrow.Datum, redeemer escrow.Redeemer,
) (ledger.ValidityWindow, error) {
	now, err := s.ledgerSvc.CurrentTime(ctx)
	if err != nil {
		return ledger.ValidityWindow{}, err
	}
	window := ledger.ValidityWindow{
		From: now,
		To:   now.Add(s.cfg.ValidityMargin),
	}

	if s.cfg.Escrow.DeadlinePolicy != escrow.DeadlineEnforced ||
		!datum.HasDeadline() {
		return window, nil
	}

	switch redeemer {
	case escrow.Cancel:
		if !now.Before(datum.Deadline) {
			return ledger.ValidityWindow{}, escrow.ErrCancelAfterDeadline
		}
		if window.To.After(datum.Deadline) {
			window.To = datum.Deadline
		}
	case escrow.Claim:
		if now.Before(datum.Deadline) {
			return ledger.ValidityWindow{}, escrow.ErrClaimBeforeDeadline
		}
	}
	return window, nil
}

func (s *escrowService) publish(
	topic string, position *domain.Position, logger *log.Entry,
) {
	if s.publisher == nil {
		return
	}
	message, _ := json.Marshal(newPositionEvent(position))
	if err := s.publisher.Publish(topic, string(message)); err != nil {
		logger.WithError(err).Warnf(
			"escrow: an error occured while publishing message for topic %s",
			topic,
		)
	}
}

// findEntitlement returns the output holding an asset of the given policy
// with the least amount of base unit, ties broken by outpoint.
func findEntitlement(utxos []ledger.Utxo, policy string) *ledger.Utxo {
	var found *ledger.Utxo
	for i := range utxos {
		u := &utxos[i]
		if !u.Value.HasPolicy(policy) {
			continue
		}
		if found == nil || u.Value.Amount < found.Value.Amount ||
			(u.Value.Amount == found.Value.Amount &&
				u.OutPoint.String() < found.OutPoint.String()) {
			found = u
		}
	}
	return found
}

// retiredEntitlement returns the value of the marker retiring one unit of
// the first asset of the given policy held by utxo.
func retiredEntitlement(
	utxo ledger.Utxo, policy string, minOutputValue uint64,
) ledger.Value {
	for _, t := range utxo.Value.Tokens {
		if t.Policy == policy && t.Quantity > 0 {
			t.Quantity = 1
			return ledger.NewValue(minOutputValue, t)
		}
	}
	return ledger.NewValue(minOutputValue)
}

// selectCollateral returns the largest output without tokens as collateral
// and the other outputs without tokens as fee sources. The collateral is
// returned as the only fee source if there are no others.
func selectCollateral(utxos []ledger.Utxo) (*ledger.Utxo, []ledger.Utxo) {
	native := make([]ledger.Utxo, 0, len(utxos))
	for _, u := range utxos {
		if !u.Value.HasTokens() {
			native = append(native, u)
		}
	}
	if len(native) <= 0 {
		return nil, nil
	}
	sort.SliceStable(native, func(i, j int) bool {
		return native[i].Value.Amount > native[j].Value.Amount
	})

	collateral := native[0]
	if len(native) == 1 {
		return &collateral, native
	}
	return &collateral, native[1:]
}
