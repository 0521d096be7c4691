package core

import (
	"context"
	"fmt"
)

// MutateAdapter implements teleport bookkeeping against a sentinel account
// plus unconditional deposit and withdraw.
//
// For a collection tracked as local, checking out accrues the item into the
// sentinel and checking in reduces it. For a non-local collection the roles
// are swapped. Every can_* call must succeed before its commit is invoked;
// commits treat ledger failures as invariant violations.
type MutateAdapter struct {
	ledger           Mutator
	matcher          Matcher
	resolver         AccountResolver
	policy           MintPolicy
	sentinel         Sentinel
	invariantHandler InvariantHandler
	observer         observer
}

func NewMutateAdapter(
	cfg Config,
	ledger Mutator,
	matcher Matcher,
	resolver AccountResolver,
	opts ...Option,
) (*MutateAdapter, error) {
	s, err := resolveSettings(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return newMutateAdapter(s, ledger, matcher, resolver)
}

func newMutateAdapter(s settings, ledger Mutator, matcher Matcher, resolver AccountResolver) (*MutateAdapter, error) {
	if ledger == nil {
		return nil, fmt.Errorf("core: ledger is required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("core: matcher is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("core: account resolver is required")
	}
	policy := s.mintPolicy
	if policy == nil {
		policy = UntrackedPolicy
	}
	handler := s.invariantHandler
	if handler == nil {
		handler = PanicOnInvariantViolation
	}
	return &MutateAdapter{
		ledger:           ledger,
		matcher:          matcher,
		resolver:         resolver,
		policy:           policy,
		sentinel:         s.sentinel,
		invariantHandler: handler,
		observer:         newObserver(s),
	}, nil
}

func (a *MutateAdapter) Sentinel() Sentinel {
	return a.sentinel
}

func (a *MutateAdapter) Policy() MintPolicy {
	return a.policy
}

// CanCheckIn validates an inbound teleport of what from origin.
func (a *MutateAdapter) CanCheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) (err error) {
	scope := a.observer.begin(ctx, operationCanCheckIn, mergeFields(xc.fields(), map[string]any{
		"origin": origin.String(),
		"asset":  what.String(),
	}))
	defer func() { scope.end(err) }()

	ref, mode, err := a.classify(scope, what)
	if err != nil {
		return err
	}
	switch mode {
	case TrackingLocal:
		return a.canReduce(scope.context(), ref)
	case TrackingNonLocal:
		return a.canAccrue(scope.context(), ref)
	default:
		return nil
	}
}

// CheckIn commits an inbound teleport validated by CanCheckIn.
func (a *MutateAdapter) CheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) {
	scope := a.observer.begin(ctx, operationCheckIn, mergeFields(xc.fields(), map[string]any{
		"origin": origin.String(),
		"asset":  what.String(),
	}))
	defer scope.end(nil)

	ref, mode, err := a.classify(scope, what)
	if err != nil {
		return
	}
	switch mode {
	case TrackingLocal:
		a.reduce(scope, operationCheckIn, ref, mode)
	case TrackingNonLocal:
		a.accrue(scope, operationCheckIn, ref, mode)
	}
}

// CanCheckOut validates an outbound teleport of what towards dest.
func (a *MutateAdapter) CanCheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) (err error) {
	scope := a.observer.begin(ctx, operationCanCheckOut, mergeFields(xc.fields(), map[string]any{
		"dest":  dest.String(),
		"asset": what.String(),
	}))
	defer func() { scope.end(err) }()

	ref, mode, err := a.classify(scope, what)
	if err != nil {
		return err
	}
	switch mode {
	case TrackingLocal:
		return a.canAccrue(scope.context(), ref)
	case TrackingNonLocal:
		return a.canReduce(scope.context(), ref)
	default:
		return nil
	}
}

// CheckOut commits an outbound teleport validated by CanCheckOut.
func (a *MutateAdapter) CheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) {
	scope := a.observer.begin(ctx, operationCheckOut, mergeFields(xc.fields(), map[string]any{
		"dest":  dest.String(),
		"asset": what.String(),
	}))
	defer scope.end(nil)

	ref, mode, err := a.classify(scope, what)
	if err != nil {
		return
	}
	switch mode {
	case TrackingLocal:
		a.accrue(scope, operationCheckOut, ref, mode)
	case TrackingNonLocal:
		a.reduce(scope, operationCheckOut, ref, mode)
	}
}

// DepositAsset mints the item into who's account. No conservation check is
// made, whatever the collection's tracking mode.
func (a *MutateAdapter) DepositAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) (err error) {
	scope := a.observer.begin(ctx, operationDepositAsset, mergeFields(optionalContextFields(xc), map[string]any{
		"who":   who.String(),
		"asset": what.String(),
	}))
	defer func() { scope.end(err) }()

	collection, item, err := a.matcher.MatchNonFungible(what)
	if err != nil {
		return err
	}
	ref := ItemRef{Collection: collection, Item: item}
	scope.set("collection", string(collection))
	scope.set("item", string(item))

	account, ok := a.resolver.ResolveAccount(who)
	if !ok {
		return AccountConversionFailedError(who)
	}
	scope.set("account", string(account))

	if err := a.ledger.MintInto(scope.context(), collection, item, account); err != nil {
		return TransactionFailedError(err, ref)
	}
	return nil
}

// WithdrawAsset burns the item out of who's account. The account is
// resolved before the asset is matched.
func (a *MutateAdapter) WithdrawAsset(
	ctx context.Context,
	what Asset,
	who Location,
	xc *ExecutionContext,
) (moved MovedAssets, err error) {
	scope := a.observer.begin(ctx, operationWithdrawAsset, mergeFields(optionalContextFields(xc), map[string]any{
		"who":   who.String(),
		"asset": what.String(),
	}))
	defer func() { scope.end(err) }()

	account, ok := a.resolver.ResolveAccount(who)
	if !ok {
		return MovedAssets{}, AccountConversionFailedError(who)
	}
	scope.set("account", string(account))

	collection, item, err := a.matcher.MatchNonFungible(what)
	if err != nil {
		return MovedAssets{}, err
	}
	ref := ItemRef{Collection: collection, Item: item}
	scope.set("collection", string(collection))
	scope.set("item", string(item))

	if err := a.ledger.Burn(scope.context(), collection, item, &account); err != nil {
		return MovedAssets{}, TransactionFailedError(err, ref)
	}
	return MovedAssetsOf(what), nil
}

// Outstanding lists the items currently held by the sentinel, i.e. the
// teleports recorded but not yet reconciled. It is empty when no sentinel
// is configured.
func (a *MutateAdapter) Outstanding(ctx context.Context) ([]ItemRef, error) {
	account, ok := a.sentinel.Get()
	if !ok {
		return []ItemRef{}, nil
	}
	lister, ok := a.ledger.(OwnedItemsLister)
	if !ok {
		return nil, ListingUnsupportedError()
	}
	items, err := lister.ItemsOwnedBy(ctx, account)
	if err != nil {
		return nil, TransactionFailedError(err, ItemRef{})
	}
	return items, nil
}

// classify matches the descriptor and reports the tracking mode that
// applies. The mode is untracked whenever no sentinel is configured.
func (a *MutateAdapter) classify(scope *operationScope, what Asset) (ItemRef, TrackingMode, error) {
	collection, item, err := a.matcher.MatchNonFungible(what)
	if err != nil {
		return ItemRef{}, "", err
	}
	ref := ItemRef{Collection: collection, Item: item}
	mode := a.policy.Classify(collection)
	if mode == "" {
		mode = TrackingUntracked
	}
	if _, ok := a.sentinel.Get(); !ok {
		mode = TrackingUntracked
	}
	scope.set("collection", string(collection))
	scope.set("item", string(item))
	scope.set("tracking_mode", string(mode))
	return ref, mode, nil
}

// canAccrue requires the item to be unowned; minting over an owned item
// would silently overwrite its owner.
func (a *MutateAdapter) canAccrue(ctx context.Context, ref ItemRef) error {
	if _, ok := a.sentinel.Get(); !ok {
		return nil
	}
	_, owned, err := a.ledger.Owner(ctx, ref.Collection, ref.Item)
	if err != nil {
		return TransactionFailedError(err, ref)
	}
	if owned {
		return NotDepositableError(ref)
	}
	return nil
}

// canReduce requires the sentinel to own the item and the item to be
// transferable.
func (a *MutateAdapter) canReduce(ctx context.Context, ref ItemRef) error {
	sentinel, ok := a.sentinel.Get()
	if !ok {
		return nil
	}
	owner, owned, err := a.ledger.Owner(ctx, ref.Collection, ref.Item)
	if err != nil {
		return TransactionFailedError(err, ref)
	}
	if !owned || owner != sentinel {
		return NotWithdrawableError(ref)
	}
	transferable, err := a.ledger.CanTransfer(ctx, ref.Collection, ref.Item)
	if err != nil {
		return TransactionFailedError(err, ref)
	}
	if !transferable {
		return NotWithdrawableError(ref)
	}
	return nil
}

func (a *MutateAdapter) accrue(scope *operationScope, operation string, ref ItemRef, mode TrackingMode) {
	sentinel, ok := a.sentinel.Get()
	if !ok {
		return
	}
	if err := a.ledger.MintInto(scope.context(), ref.Collection, ref.Item, sentinel); err != nil {
		a.violated(scope, operation, ref, mode, fmt.Errorf("mint into sentinel: %w", err))
	}
}

func (a *MutateAdapter) reduce(scope *operationScope, operation string, ref ItemRef, mode TrackingMode) {
	if _, ok := a.sentinel.Get(); !ok {
		return
	}
	if err := a.ledger.Burn(scope.context(), ref.Collection, ref.Item, nil); err != nil {
		a.violated(scope, operation, ref, mode, fmt.Errorf("burn from sentinel: %w", err))
	}
}

// violated marks the commit as failed before handing the violation to the
// handler, which usually panics.
func (a *MutateAdapter) violated(scope *operationScope, operation string, ref ItemRef, mode TrackingMode, cause error) {
	violation := &InvariantViolation{
		Operation: operation,
		Item:      ref,
		Mode:      mode,
		Cause:     cause,
	}
	scope.fail(violation.ToError())
	a.observer.invariantViolated(scope.context(), violation)
	a.invariantHandler(violation)
}

func optionalContextFields(xc *ExecutionContext) map[string]any {
	if xc == nil {
		return map[string]any{}
	}
	return xc.fields()
}

var (
	_ TeleportChecker = (*MutateAdapter)(nil)
	_ AssetMutator    = (*MutateAdapter)(nil)
)
