package core

import (
	"context"
	"fmt"
)

// TransferAdapter moves item ownership between two resolved accounts. It
// never mints or burns.
type TransferAdapter struct {
	ledger   Transferrer
	matcher  Matcher
	resolver AccountResolver
	observer observer
}

func NewTransferAdapter(
	cfg Config,
	ledger Transferrer,
	matcher Matcher,
	resolver AccountResolver,
	opts ...Option,
) (*TransferAdapter, error) {
	s, err := resolveSettings(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return newTransferAdapter(s, ledger, matcher, resolver)
}

func newTransferAdapter(s settings, ledger Transferrer, matcher Matcher, resolver AccountResolver) (*TransferAdapter, error) {
	if ledger == nil {
		return nil, fmt.Errorf("core: ledger is required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("core: matcher is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("core: account resolver is required")
	}
	return &TransferAdapter{
		ledger:   ledger,
		matcher:  matcher,
		resolver: resolver,
		observer: newObserver(s),
	}, nil
}

// TransferAsset hands the item described by what to the account behind to.
// from is informational; the ledger is the only authority on the current
// owner.
func (a *TransferAdapter) TransferAsset(
	ctx context.Context,
	what Asset,
	from, to Location,
	xc ExecutionContext,
) (moved MovedAssets, err error) {
	scope := a.observer.begin(ctx, operationTransferAsset, mergeFields(xc.fields(), map[string]any{
		"asset": what.String(),
		"from":  from.String(),
		"to":    to.String(),
	}))
	defer func() { scope.end(err) }()

	collection, item, err := a.matcher.MatchNonFungible(what)
	if err != nil {
		return MovedAssets{}, err
	}
	ref := ItemRef{Collection: collection, Item: item}
	scope.set("collection", string(collection))
	scope.set("item", string(item))

	destination, ok := a.resolver.ResolveAccount(to)
	if !ok {
		return MovedAssets{}, AccountConversionFailedError(to)
	}
	scope.set("destination", string(destination))

	if err := a.ledger.Transfer(scope.context(), collection, item, destination); err != nil {
		return MovedAssets{}, TransactionFailedError(err, ref)
	}
	return MovedAssetsOf(what), nil
}

var _ AssetTransferrer = (*TransferAdapter)(nil)
