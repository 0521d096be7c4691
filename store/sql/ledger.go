package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-nonfungibles/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Ledger is a core.Ledger backed by the nonfungible_items table. Every
// mutation runs in its own transaction.
type Ledger struct {
	db   *bun.DB
	repo repository.Repository[*itemRecord]
}

func NewLedger(db *bun.DB) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepositoryWithConfig[*itemRecord](
		db,
		itemHandlers(),
		nil,
		repository.WithDefaultListPagination(0, 0),
	)
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid item repository wiring: %w", err)
		}
	}
	return &Ledger{db: db, repo: repo}, nil
}

func (l *Ledger) Owner(ctx context.Context, collection core.CollectionID, item core.ItemID) (core.AccountID, bool, error) {
	if l == nil || l.db == nil {
		return "", false, fmt.Errorf("sqlstore: ledger is not configured")
	}
	record, err := findItem(ctx, l.db, normalizeRef(collection, item))
	if err != nil || record == nil {
		return "", false, err
	}
	return core.AccountID(record.OwnerID), true, nil
}

func (l *Ledger) CanTransfer(ctx context.Context, collection core.CollectionID, item core.ItemID) (bool, error) {
	if l == nil || l.db == nil {
		return false, fmt.Errorf("sqlstore: ledger is not configured")
	}
	record, err := findItem(ctx, l.db, normalizeRef(collection, item))
	if err != nil {
		return false, err
	}
	return record != nil && !record.Locked, nil
}

func (l *Ledger) MintInto(ctx context.Context, collection core.CollectionID, item core.ItemID, who core.AccountID) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("sqlstore: ledger is not configured")
	}
	ref := normalizeRef(collection, item)
	if err := ref.Validate(); err != nil {
		return err
	}
	owner := core.AccountID(strings.TrimSpace(string(who)))
	if owner == "" {
		return fmt.Errorf("sqlstore: mint target account is required")
	}

	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findItem(ctx, tx, ref)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", core.ErrItemExists, ref)
		}
		record := newItemRecord(ref, owner, time.Now().UTC())
		record.ID = uuid.NewString()
		_, err = tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

func (l *Ledger) Burn(ctx context.Context, collection core.CollectionID, item core.ItemID, expectedOwner *core.AccountID) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("sqlstore: ledger is not configured")
	}
	ref := normalizeRef(collection, item)

	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findItem(ctx, tx, ref)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: %s", core.ErrUnknownItem, ref)
		}
		if expectedOwner != nil && record.OwnerID != string(*expectedOwner) {
			return fmt.Errorf("%w: %s", core.ErrNotItemOwner, ref)
		}
		_, err = tx.NewDelete().Model(record).WherePK().Exec(ctx)
		return err
	})
}

func (l *Ledger) Transfer(ctx context.Context, collection core.CollectionID, item core.ItemID, destination core.AccountID) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("sqlstore: ledger is not configured")
	}
	ref := normalizeRef(collection, item)
	owner := strings.TrimSpace(string(destination))
	if owner == "" {
		return fmt.Errorf("sqlstore: transfer destination is required")
	}

	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findItem(ctx, tx, ref)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: %s", core.ErrUnknownItem, ref)
		}
		if record.Locked {
			return fmt.Errorf("%w: %s", core.ErrItemLocked, ref)
		}
		record.OwnerID = owner
		record.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().
			Model(record).
			Column("owner_id", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

// Lock marks an item as non-transferable.
func (l *Ledger) Lock(ctx context.Context, collection core.CollectionID, item core.ItemID) error {
	return l.setLocked(ctx, normalizeRef(collection, item), true)
}

func (l *Ledger) Unlock(ctx context.Context, collection core.CollectionID, item core.ItemID) error {
	return l.setLocked(ctx, normalizeRef(collection, item), false)
}

// ItemsOwnedBy lists every item held by who, unpaginated, ordered by
// collection then item.
func (l *Ledger) ItemsOwnedBy(ctx context.Context, who core.AccountID) ([]core.ItemRef, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("sqlstore: ledger is not configured")
	}
	records, _, err := l.repo.List(ctx,
		repository.SelectBy("owner_id", "=", strings.TrimSpace(string(who))),
		repository.OrderBy("collection_id ASC", "item_id ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.ItemRef, 0, len(records))
	for _, record := range records {
		out = append(out, record.ref())
	}
	core.SortItemRefs(out)
	return out, nil
}

// Count returns how many items of collection exist.
func (l *Ledger) Count(ctx context.Context, collection core.CollectionID) (int, error) {
	if l == nil || l.db == nil {
		return 0, fmt.Errorf("sqlstore: ledger is not configured")
	}
	return l.db.NewSelect().
		Model((*itemRecord)(nil)).
		Where("?TableAlias.collection_id = ?", strings.TrimSpace(string(collection))).
		Count(ctx)
}

func (l *Ledger) setLocked(ctx context.Context, ref core.ItemRef, locked bool) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("sqlstore: ledger is not configured")
	}
	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findItem(ctx, tx, ref)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("%w: %s", core.ErrUnknownItem, ref)
		}
		record.Locked = locked
		record.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().
			Model(record).
			Column("locked", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

// findItem returns nil without error when the item does not exist.
func findItem(ctx context.Context, db bun.IDB, ref core.ItemRef) (*itemRecord, error) {
	record := &itemRecord{}
	err := db.NewSelect().
		Model(record).
		Where("?TableAlias.collection_id = ?", string(ref.Collection)).
		Where("?TableAlias.item_id = ?", string(ref.Item)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func normalizeRef(collection core.CollectionID, item core.ItemID) core.ItemRef {
	return core.ItemRef{
		Collection: core.CollectionID(strings.TrimSpace(string(collection))),
		Item:       core.ItemID(strings.TrimSpace(string(item))),
	}
}
