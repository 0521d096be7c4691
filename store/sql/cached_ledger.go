package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-nonfungibles/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const itemCacheKeyPrefix = "go-nonfungibles::item::v1"

type itemLocker interface {
	Lock(ctx context.Context, collection core.CollectionID, item core.ItemID) error
	Unlock(ctx context.Context, collection core.CollectionID, item core.ItemID) error
}

// itemSnapshot is the cached read view of one item.
type itemSnapshot struct {
	Owner        core.AccountID
	Owned        bool
	Transferable bool
}

// CachedLedger serves Owner and CanTransfer from a read-through cache and
// drops the cached entry after every successful mutation of the item.
//
// A mutation that committed is never reported as failed because of the
// cache. When the entry cannot be evicted the key is remembered as stale and
// reads of it go to the base ledger until a later eviction succeeds.
type CachedLedger struct {
	base   core.Ledger
	cache  repositorycache.CacheService
	logger core.Logger

	mu    sync.Mutex
	stale map[string]struct{}
}

type CachedLedgerOption func(*CachedLedger)

func WithCacheLogger(logger core.Logger) CachedLedgerOption {
	return func(l *CachedLedger) {
		l.logger = logger
	}
}

func NewCachedLedger(
	base core.Ledger,
	cacheService repositorycache.CacheService,
	opts ...CachedLedgerOption,
) (*CachedLedger, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base ledger is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: ledger cache service is required")
	}
	ledger := &CachedLedger{
		base:  base,
		cache: cacheService,
		stale: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ledger)
		}
	}
	ledger.logger = glog.Ensure(ledger.logger)
	return ledger, nil
}

// ItemCacheKey returns go-nonfungibles::item::v1::<collection>::<item> with
// each segment URL-path escaped.
func ItemCacheKey(ref core.ItemRef) (string, error) {
	ref = normalizeRef(ref.Collection, ref.Item)
	if err := ref.Validate(); err != nil {
		return "", err
	}
	return strings.Join([]string{
		itemCacheKeyPrefix,
		url.PathEscape(string(ref.Collection)),
		url.PathEscape(string(ref.Item)),
	}, "::"), nil
}

func (l *CachedLedger) Owner(ctx context.Context, collection core.CollectionID, item core.ItemID) (core.AccountID, bool, error) {
	snapshot, err := l.snapshot(ctx, normalizeRef(collection, item))
	if err != nil {
		return "", false, err
	}
	return snapshot.Owner, snapshot.Owned, nil
}

func (l *CachedLedger) CanTransfer(ctx context.Context, collection core.CollectionID, item core.ItemID) (bool, error) {
	snapshot, err := l.snapshot(ctx, normalizeRef(collection, item))
	if err != nil {
		return false, err
	}
	return snapshot.Transferable, nil
}

func (l *CachedLedger) MintInto(ctx context.Context, collection core.CollectionID, item core.ItemID, who core.AccountID) error {
	if err := l.configured(); err != nil {
		return err
	}
	if err := l.base.MintInto(ctx, collection, item, who); err != nil {
		return err
	}
	l.invalidate(ctx, normalizeRef(collection, item))
	return nil
}

func (l *CachedLedger) Burn(ctx context.Context, collection core.CollectionID, item core.ItemID, expectedOwner *core.AccountID) error {
	if err := l.configured(); err != nil {
		return err
	}
	if err := l.base.Burn(ctx, collection, item, expectedOwner); err != nil {
		return err
	}
	l.invalidate(ctx, normalizeRef(collection, item))
	return nil
}

func (l *CachedLedger) Transfer(ctx context.Context, collection core.CollectionID, item core.ItemID, destination core.AccountID) error {
	if err := l.configured(); err != nil {
		return err
	}
	if err := l.base.Transfer(ctx, collection, item, destination); err != nil {
		return err
	}
	l.invalidate(ctx, normalizeRef(collection, item))
	return nil
}

func (l *CachedLedger) Lock(ctx context.Context, collection core.CollectionID, item core.ItemID) error {
	locker, err := l.locker()
	if err != nil {
		return err
	}
	if err := locker.Lock(ctx, collection, item); err != nil {
		return err
	}
	l.invalidate(ctx, normalizeRef(collection, item))
	return nil
}

func (l *CachedLedger) Unlock(ctx context.Context, collection core.CollectionID, item core.ItemID) error {
	locker, err := l.locker()
	if err != nil {
		return err
	}
	if err := locker.Unlock(ctx, collection, item); err != nil {
		return err
	}
	l.invalidate(ctx, normalizeRef(collection, item))
	return nil
}

// ItemsOwnedBy is not cached.
func (l *CachedLedger) ItemsOwnedBy(ctx context.Context, who core.AccountID) ([]core.ItemRef, error) {
	if err := l.configured(); err != nil {
		return nil, err
	}
	lister, ok := l.base.(core.OwnedItemsLister)
	if !ok {
		return nil, core.ListingUnsupportedError()
	}
	return lister.ItemsOwnedBy(ctx, who)
}

func (l *CachedLedger) snapshot(ctx context.Context, ref core.ItemRef) (itemSnapshot, error) {
	if err := l.configured(); err != nil {
		return itemSnapshot{}, err
	}
	cacheKey, err := ItemCacheKey(ref)
	if err != nil {
		return itemSnapshot{}, err
	}
	if l.isStale(cacheKey) {
		if !l.evict(ctx, cacheKey) {
			return l.fetch(ctx, ref)
		}
		l.clearStale(cacheKey)
	}
	return repositorycache.GetOrFetch(ctx, l.cache, cacheKey, func(ctx context.Context) (itemSnapshot, error) {
		return l.fetch(ctx, ref)
	})
}

func (l *CachedLedger) fetch(ctx context.Context, ref core.ItemRef) (itemSnapshot, error) {
	owner, owned, err := l.base.Owner(ctx, ref.Collection, ref.Item)
	if err != nil {
		return itemSnapshot{}, err
	}
	transferable, err := l.base.CanTransfer(ctx, ref.Collection, ref.Item)
	if err != nil {
		return itemSnapshot{}, err
	}
	return itemSnapshot{Owner: owner, Owned: owned, Transferable: transferable}, nil
}

// invalidate runs after the base ledger committed, so failures are logged
// and the key is marked stale instead of being returned.
func (l *CachedLedger) invalidate(ctx context.Context, ref core.ItemRef) {
	cacheKey, err := ItemCacheKey(ref)
	if err != nil {
		return
	}
	if l.evict(ctx, cacheKey) {
		l.clearStale(cacheKey)
		return
	}
	l.mu.Lock()
	l.stale[cacheKey] = struct{}{}
	l.mu.Unlock()
}

func (l *CachedLedger) evict(ctx context.Context, cacheKey string) bool {
	deleteErr := l.cache.Delete(ctx, cacheKey)
	if deleteErr == nil {
		return true
	}
	invalidateErr := l.cache.InvalidateKeys(ctx, []string{cacheKey})
	if invalidateErr == nil {
		return true
	}
	l.logger.Error("ledger cache eviction failed",
		"cache_key", cacheKey,
		"delete_error", deleteErr.Error(),
		"invalidate_error", invalidateErr.Error(),
	)
	return false
}

func (l *CachedLedger) isStale(cacheKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.stale[cacheKey]
	return ok
}

func (l *CachedLedger) clearStale(cacheKey string) {
	l.mu.Lock()
	delete(l.stale, cacheKey)
	l.mu.Unlock()
}

func (l *CachedLedger) locker() (itemLocker, error) {
	if err := l.configured(); err != nil {
		return nil, err
	}
	locker, ok := l.base.(itemLocker)
	if !ok {
		return nil, fmt.Errorf("sqlstore: base ledger does not support locking")
	}
	return locker, nil
}

func (l *CachedLedger) configured() error {
	if l == nil || l.base == nil || l.cache == nil || l.stale == nil {
		return fmt.Errorf("sqlstore: cached ledger is not configured")
	}
	return nil
}
