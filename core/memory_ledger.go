package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrItemExists   = errors.New("core: item already exists")
	ErrUnknownItem  = errors.New("core: unknown item")
	ErrNotItemOwner = errors.New("core: account does not own item")
	ErrItemLocked   = errors.New("core: item is locked")
)

type memoryItem struct {
	owner  AccountID
	locked bool
}

// MemoryLedger is an in-process Ledger. Items exist while they have an
// owner; burning removes them.
type MemoryLedger struct {
	mu    sync.Mutex
	items map[ItemRef]memoryItem
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{items: map[ItemRef]memoryItem{}}
}

func (l *MemoryLedger) Owner(_ context.Context, collection CollectionID, item ItemID) (AccountID, bool, error) {
	if l == nil {
		return "", false, fmt.Errorf("core: memory ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.items[ItemRef{Collection: collection, Item: item}]
	if !ok {
		return "", false, nil
	}
	return entry.owner, true, nil
}

func (l *MemoryLedger) CanTransfer(_ context.Context, collection CollectionID, item ItemID) (bool, error) {
	if l == nil {
		return false, fmt.Errorf("core: memory ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.items[ItemRef{Collection: collection, Item: item}]
	return ok && !entry.locked, nil
}

func (l *MemoryLedger) MintInto(_ context.Context, collection CollectionID, item ItemID, who AccountID) error {
	if l == nil {
		return fmt.Errorf("core: memory ledger is not configured")
	}
	ref := ItemRef{Collection: collection, Item: item}
	if err := ref.Validate(); err != nil {
		return err
	}
	if who == "" {
		return fmt.Errorf("core: mint target account is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.items[ref]; ok {
		return fmt.Errorf("%w: %s", ErrItemExists, ref)
	}
	l.items[ref] = memoryItem{owner: who}
	return nil
}

func (l *MemoryLedger) Burn(_ context.Context, collection CollectionID, item ItemID, expectedOwner *AccountID) error {
	if l == nil {
		return fmt.Errorf("core: memory ledger is not configured")
	}
	ref := ItemRef{Collection: collection, Item: item}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.items[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, ref)
	}
	if expectedOwner != nil && entry.owner != *expectedOwner {
		return fmt.Errorf("%w: %s", ErrNotItemOwner, ref)
	}
	delete(l.items, ref)
	return nil
}

func (l *MemoryLedger) Transfer(_ context.Context, collection CollectionID, item ItemID, destination AccountID) error {
	if l == nil {
		return fmt.Errorf("core: memory ledger is not configured")
	}
	if destination == "" {
		return fmt.Errorf("core: transfer destination is required")
	}
	ref := ItemRef{Collection: collection, Item: item}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.items[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, ref)
	}
	if entry.locked {
		return fmt.Errorf("%w: %s", ErrItemLocked, ref)
	}
	entry.owner = destination
	l.items[ref] = entry
	return nil
}

// Lock marks an existing item as non-transferable.
func (l *MemoryLedger) Lock(_ context.Context, collection CollectionID, item ItemID) error {
	return l.setLocked(ItemRef{Collection: collection, Item: item}, true)
}

func (l *MemoryLedger) Unlock(_ context.Context, collection CollectionID, item ItemID) error {
	return l.setLocked(ItemRef{Collection: collection, Item: item}, false)
}

func (l *MemoryLedger) ItemsOwnedBy(_ context.Context, who AccountID) ([]ItemRef, error) {
	if l == nil {
		return nil, fmt.Errorf("core: memory ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ItemRef, 0)
	for ref, entry := range l.items {
		if entry.owner == who {
			out = append(out, ref)
		}
	}
	SortItemRefs(out)
	return out, nil
}

// Count returns how many items of the collection currently exist.
func (l *MemoryLedger) Count(collection CollectionID) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for ref := range l.items {
		if ref.Collection == collection {
			count++
		}
	}
	return count
}

func (l *MemoryLedger) setLocked(ref ItemRef, locked bool) error {
	if l == nil {
		return fmt.Errorf("core: memory ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.items[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, ref)
	}
	entry.locked = locked
	l.items[ref] = entry
	return nil
}

// SortItemRefs orders refs by collection then item.
func SortItemRefs(refs []ItemRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Collection != refs[j].Collection {
			return refs[i].Collection < refs[j].Collection
		}
		return refs[i].Item < refs[j].Item
	})
}

var (
	_ Ledger           = (*MemoryLedger)(nil)
	_ OwnedItemsLister = (*MemoryLedger)(nil)
)
