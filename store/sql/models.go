package sqlstore

import (
	"time"

	"github.com/goliatone/go-nonfungibles/core"
	"github.com/uptrace/bun"
)

// itemRecord is one existing item. Burning an item deletes its row.
type itemRecord struct {
	bun.BaseModel `bun:"table:nonfungible_items,alias:nfi"`

	ID           string    `bun:"id,pk"`
	CollectionID string    `bun:"collection_id,notnull"`
	ItemID       string    `bun:"item_id,notnull"`
	OwnerID      string    `bun:"owner_id,notnull"`
	Locked       bool      `bun:"locked,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newItemRecord(ref core.ItemRef, owner core.AccountID, now time.Time) *itemRecord {
	return &itemRecord{
		CollectionID: string(ref.Collection),
		ItemID:       string(ref.Item),
		OwnerID:      string(owner),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (r *itemRecord) ref() core.ItemRef {
	if r == nil {
		return core.ItemRef{}
	}
	return core.ItemRef{
		Collection: core.CollectionID(r.CollectionID),
		Item:       core.ItemID(r.ItemID),
	}
}
