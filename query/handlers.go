package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-nonfungibles/core"
)

// ItemOwnership is the read view of one item.
type ItemOwnership struct {
	Ref          core.ItemRef
	Owner        core.AccountID
	Owned        bool
	Transferable bool
}

type OutstandingReader interface {
	Outstanding(ctx context.Context) ([]core.ItemRef, error)
}

type ItemOwnerQuery struct {
	inspector core.Inspector
}

func NewItemOwnerQuery(inspector core.Inspector) *ItemOwnerQuery {
	return &ItemOwnerQuery{inspector: inspector}
}

func (q *ItemOwnerQuery) Query(ctx context.Context, msg ItemOwnerMessage) (ItemOwnership, error) {
	if q == nil || q.inspector == nil {
		return ItemOwnership{}, core.DependencyError("query: ledger inspector is required")
	}
	ref := core.ItemRef{
		Collection: core.CollectionID(strings.TrimSpace(string(msg.Collection))),
		Item:       core.ItemID(strings.TrimSpace(string(msg.Item))),
	}
	owner, owned, err := q.inspector.Owner(ctx, ref.Collection, ref.Item)
	if err != nil {
		return ItemOwnership{}, err
	}
	out := ItemOwnership{Ref: ref, Owner: owner, Owned: owned}
	if owned {
		out.Transferable, err = q.inspector.CanTransfer(ctx, ref.Collection, ref.Item)
		if err != nil {
			return ItemOwnership{}, err
		}
	}
	return out, nil
}

type TrackingModeQuery struct {
	policy core.MintPolicy
}

func NewTrackingModeQuery(policy core.MintPolicy) *TrackingModeQuery {
	return &TrackingModeQuery{policy: policy}
}

func (q *TrackingModeQuery) Query(_ context.Context, msg TrackingModeMessage) (core.TrackingMode, error) {
	if q == nil || q.policy == nil {
		return "", core.DependencyError("query: mint policy is required")
	}
	return q.policy.Classify(core.CollectionID(strings.TrimSpace(string(msg.Collection)))), nil
}

type OutstandingQuery struct {
	reader OutstandingReader
}

func NewOutstandingQuery(reader OutstandingReader) *OutstandingQuery {
	return &OutstandingQuery{reader: reader}
}

func (q *OutstandingQuery) Query(ctx context.Context, _ OutstandingMessage) ([]core.ItemRef, error) {
	if q == nil || q.reader == nil {
		return nil, core.DependencyError("query: outstanding reader is required")
	}
	return q.reader.Outstanding(ctx)
}

type MatchAssetQuery struct {
	matcher core.Matcher
}

func NewMatchAssetQuery(matcher core.Matcher) *MatchAssetQuery {
	return &MatchAssetQuery{matcher: matcher}
}

func (q *MatchAssetQuery) Query(_ context.Context, msg MatchAssetMessage) (core.ItemRef, error) {
	if q == nil || q.matcher == nil {
		return core.ItemRef{}, core.DependencyError("query: matcher is required")
	}
	collection, item, err := q.matcher.MatchNonFungible(msg.Asset)
	if err != nil {
		return core.ItemRef{}, err
	}
	return core.ItemRef{Collection: collection, Item: item}, nil
}
