package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// Matcher maps an asset descriptor to the item it names. Descriptors the
// matcher does not recognise yield an error carrying
// ErrorCodeAssetNotHandled.
type Matcher interface {
	MatchNonFungible(what Asset) (CollectionID, ItemID, error)
}

type MatcherFunc func(what Asset) (CollectionID, ItemID, error)

func (f MatcherFunc) MatchNonFungible(what Asset) (CollectionID, ItemID, error) {
	return f(what)
}

type AccountResolver interface {
	ResolveAccount(location Location) (AccountID, bool)
}

type AccountResolverFunc func(location Location) (AccountID, bool)

func (f AccountResolverFunc) ResolveAccount(location Location) (AccountID, bool) {
	return f(location)
}

type Inspector interface {
	Owner(ctx context.Context, collection CollectionID, item ItemID) (AccountID, bool, error)
	CanTransfer(ctx context.Context, collection CollectionID, item ItemID) (bool, error)
}

type Mutator interface {
	Inspector
	MintInto(ctx context.Context, collection CollectionID, item ItemID, who AccountID) error
	// Burn destroys the item. When expectedOwner is non-nil the ledger must
	// refuse to burn an item owned by anyone else.
	Burn(ctx context.Context, collection CollectionID, item ItemID, expectedOwner *AccountID) error
}

type Transferrer interface {
	Transfer(ctx context.Context, collection CollectionID, item ItemID, destination AccountID) error
}

type Ledger interface {
	Mutator
	Transferrer
}

// OwnedItemsLister is implemented by ledgers that can enumerate the items
// held by one account.
type OwnedItemsLister interface {
	ItemsOwnedBy(ctx context.Context, who AccountID) ([]ItemRef, error)
}

type MintPolicy interface {
	Classify(collection CollectionID) TrackingMode
}

// AssetTransferrer moves ownership between two accounts.
type AssetTransferrer interface {
	TransferAsset(ctx context.Context, what Asset, from, to Location, xc ExecutionContext) (MovedAssets, error)
}

// TeleportChecker implements the validate/commit pairs for teleports.
type TeleportChecker interface {
	CanCheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext) error
	CheckIn(ctx context.Context, origin Location, what Asset, xc ExecutionContext)
	CanCheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext) error
	CheckOut(ctx context.Context, dest Location, what Asset, xc ExecutionContext)
}

type AssetMutator interface {
	DepositAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) error
	WithdrawAsset(ctx context.Context, what Asset, who Location, xc *ExecutionContext) (MovedAssets, error)
}

// Transactor is the full operation set consumed by the execution engine.
type Transactor interface {
	AssetTransferrer
	TeleportChecker
	AssetMutator
}

// MetricsRecorder receives one counter and one duration histogram per
// adapter operation.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// NopMetricsRecorder discards every sample.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string)         {}
func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
