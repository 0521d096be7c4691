package sqlstore

import "github.com/goliatone/go-nonfungibles/core"

var (
	_ core.Ledger           = (*Ledger)(nil)
	_ core.OwnedItemsLister = (*Ledger)(nil)
	_ core.Ledger           = (*CachedLedger)(nil)
	_ core.OwnedItemsLister = (*CachedLedger)(nil)
	_ itemLocker            = (*Ledger)(nil)
)
