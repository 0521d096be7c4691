package core

import "context"

// Transactors tries each member in order. A member answering
// AssetNotHandled passes the asset on to the next one; any other outcome
// ends the search. Commits are broadcast, since members that do not handle
// the asset ignore them.
type Transactors []Transactor

func (t Transactors) TransferAsset(
	ctx context.Context,
	what Asset,
	from, to Location,
	xc ExecutionContext,
) (MovedAssets, error) {
	for _, member := range t {
		moved, err := member.TransferAsset(ctx, what, from, to, xc)
		if IsAssetNotHandled(err) {
			continue
		}
		return moved, err
	}
	return MovedAssets{}, AssetNotHandledError(what)
}

func (t Transactors) CanCheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) error {
	for _, member := range t {
		err := member.CanCheckIn(ctx, origin, what, xc)
		if IsAssetNotHandled(err) {
			continue
		}
		return err
	}
	return AssetNotHandledError(what)
}

func (t Transactors) CheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) {
	for _, member := range t {
		member.CheckIn(ctx, origin, what, xc)
	}
}

func (t Transactors) CanCheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) error {
	for _, member := range t {
		err := member.CanCheckOut(ctx, dest, what, xc)
		if IsAssetNotHandled(err) {
			continue
		}
		return err
	}
	return AssetNotHandledError(what)
}

func (t Transactors) CheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) {
	for _, member := range t {
		member.CheckOut(ctx, dest, what, xc)
	}
}

func (t Transactors) DepositAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) error {
	for _, member := range t {
		err := member.DepositAsset(ctx, what, who, xc)
		if IsAssetNotHandled(err) {
			continue
		}
		return err
	}
	return AssetNotHandledError(what)
}

func (t Transactors) WithdrawAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) (MovedAssets, error) {
	for _, member := range t {
		moved, err := member.WithdrawAsset(ctx, what, who, xc)
		if IsAssetNotHandled(err) {
			continue
		}
		return moved, err
	}
	return MovedAssets{}, AssetNotHandledError(what)
}

var _ Transactor = Transactors(nil)
