package query

import (
	"strings"

	"github.com/goliatone/go-nonfungibles/core"
)

const (
	TypeItemOwner    = "nonfungibles.query.item.owner"
	TypeTrackingMode = "nonfungibles.query.collection.tracking_mode"
	TypeOutstanding  = "nonfungibles.query.sentinel.outstanding"
	TypeMatchAsset   = "nonfungibles.query.asset.match"
)

type ItemOwnerMessage struct {
	Collection core.CollectionID
	Item       core.ItemID
}

func (ItemOwnerMessage) Type() string { return TypeItemOwner }

func (m ItemOwnerMessage) Validate() error {
	if strings.TrimSpace(string(m.Collection)) == "" {
		return core.FieldValidationError("query", "collection", "collection id is required")
	}
	if strings.TrimSpace(string(m.Item)) == "" {
		return core.FieldValidationError("query", "item", "item id is required")
	}
	return nil
}

type TrackingModeMessage struct {
	Collection core.CollectionID
}

func (TrackingModeMessage) Type() string { return TypeTrackingMode }

func (m TrackingModeMessage) Validate() error {
	if strings.TrimSpace(string(m.Collection)) == "" {
		return core.FieldValidationError("query", "collection", "collection id is required")
	}
	return nil
}

// OutstandingMessage asks for the items the sentinel currently holds.
type OutstandingMessage struct{}

func (OutstandingMessage) Type() string { return TypeOutstanding }

func (OutstandingMessage) Validate() error { return nil }

type MatchAssetMessage struct {
	Asset core.Asset
}

func (MatchAssetMessage) Type() string { return TypeMatchAsset }

func (m MatchAssetMessage) Validate() error {
	if !m.Asset.Fun.NonFungible() {
		return core.FieldValidationError("query", "asset", "non-fungible instance is required")
	}
	return nil
}
