package core

import (
	"context"
	"fmt"
)

// Adapter exposes the full transactor surface by delegating transfers to a
// TransferAdapter and everything else to a MutateAdapter. Both halves share
// one matcher, resolver, policy and sentinel.
type Adapter struct {
	config   Config
	transfer *TransferAdapter
	mutate   *MutateAdapter
}

func NewAdapter(
	cfg Config,
	ledger Ledger,
	matcher Matcher,
	resolver AccountResolver,
	opts ...Option,
) (*Adapter, error) {
	if ledger == nil {
		return nil, fmt.Errorf("core: ledger is required")
	}
	s, err := resolveSettings(cfg, opts...)
	if err != nil {
		return nil, err
	}
	transfer, err := newTransferAdapter(s, ledger, matcher, resolver)
	if err != nil {
		return nil, err
	}
	mutate, err := newMutateAdapter(s, ledger, matcher, resolver)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		config:   s.config,
		transfer: transfer,
		mutate:   mutate,
	}, nil
}

func (a *Adapter) Config() Config {
	return a.config
}

func (a *Adapter) Sentinel() Sentinel {
	return a.mutate.Sentinel()
}

func (a *Adapter) Policy() MintPolicy {
	return a.mutate.Policy()
}

func (a *Adapter) TransferAsset(
	ctx context.Context,
	what Asset,
	from, to Location,
	xc ExecutionContext,
) (MovedAssets, error) {
	return a.transfer.TransferAsset(ctx, what, from, to, xc)
}

func (a *Adapter) CanCheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) error {
	return a.mutate.CanCheckIn(ctx, origin, what, xc)
}

func (a *Adapter) CheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) {
	a.mutate.CheckIn(ctx, origin, what, xc)
}

func (a *Adapter) CanCheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) error {
	return a.mutate.CanCheckOut(ctx, dest, what, xc)
}

func (a *Adapter) CheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) {
	a.mutate.CheckOut(ctx, dest, what, xc)
}

func (a *Adapter) DepositAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) error {
	return a.mutate.DepositAsset(ctx, what, who, xc)
}

func (a *Adapter) WithdrawAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) (MovedAssets, error) {
	return a.mutate.WithdrawAsset(ctx, what, who, xc)
}

func (a *Adapter) Outstanding(ctx context.Context) ([]ItemRef, error) {
	return a.mutate.Outstanding(ctx)
}

var _ Transactor = (*Adapter)(nil)
