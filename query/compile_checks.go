package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-nonfungibles/core"
)

var (
	_ gocmd.Querier[ItemOwnerMessage, ItemOwnership]        = (*ItemOwnerQuery)(nil)
	_ gocmd.Querier[TrackingModeMessage, core.TrackingMode] = (*TrackingModeQuery)(nil)
	_ gocmd.Querier[OutstandingMessage, []core.ItemRef]     = (*OutstandingQuery)(nil)
	_ gocmd.Querier[MatchAssetMessage, core.ItemRef]        = (*MatchAssetQuery)(nil)
	_ OutstandingReader                                     = (*core.Adapter)(nil)
)
