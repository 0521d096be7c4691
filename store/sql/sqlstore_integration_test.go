package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/goliatone/go-nonfungibles/core"
	"github.com/goliatone/go-nonfungibles/location"
	"github.com/goliatone/go-nonfungibles/matcher"
	"github.com/goliatone/go-nonfungibles/migrations"
	sqlstore "github.com/goliatone/go-nonfungibles/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"nonfungible_items",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "nonfungible_items" {
		t.Fatalf("expected nonfungible_items table, got %q", tableName)
	}
}

func TestLedger_MintTransferBurn(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	ledger, err := sqlstore.NewLedgerFromPersistence(client)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	if _, owned, err := ledger.Owner(ctx, "1", "42"); err != nil || owned {
		t.Fatalf("expected missing item, got owned=%v err=%v", owned, err)
	}
	if err := ledger.MintInto(ctx, "1", "42", "alice"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.MintInto(ctx, "1", "42", "bob"); !errors.Is(err, core.ErrItemExists) {
		t.Fatalf("expected duplicate mint to fail, got %v", err)
	}
	owner, owned, err := ledger.Owner(ctx, "1", "42")
	if err != nil || !owned || owner != "alice" {
		t.Fatalf("unexpected owner %q (%v, %v)", owner, owned, err)
	}

	if err := ledger.Lock(ctx, "1", "42"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if ok, _ := ledger.CanTransfer(ctx, "1", "42"); ok {
		t.Fatalf("expected locked item to be non-transferable")
	}
	if err := ledger.Transfer(ctx, "1", "42", "bob"); !errors.Is(err, core.ErrItemLocked) {
		t.Fatalf("expected locked transfer to fail, got %v", err)
	}
	if err := ledger.Unlock(ctx, "1", "42"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := ledger.Transfer(ctx, "1", "42", "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if owner, _, _ := ledger.Owner(ctx, "1", "42"); owner != "bob" {
		t.Fatalf("expected bob after transfer, got %q", owner)
	}

	alice := core.AccountID("alice")
	if err := ledger.Burn(ctx, "1", "42", &alice); !errors.Is(err, core.ErrNotItemOwner) {
		t.Fatalf("expected owner check on burn, got %v", err)
	}
	if err := ledger.Burn(ctx, "1", "42", nil); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if err := ledger.Burn(ctx, "1", "42", nil); !errors.Is(err, core.ErrUnknownItem) {
		t.Fatalf("expected unknown item, got %v", err)
	}
	if count, err := ledger.Count(ctx, "1"); err != nil || count != 0 {
		t.Fatalf("expected empty collection, got %d (%v)", count, err)
	}
}

func TestLedger_ItemsOwnedBy(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	ledger, err := sqlstore.NewLedgerFrom(client)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	for _, item := range []string{"3", "1", "2"} {
		if err := ledger.MintInto(ctx, "7", core.ItemID(item), "checking"); err != nil {
			t.Fatalf("mint %s: %v", item, err)
		}
	}
	if err := ledger.MintInto(ctx, "7", "9", "alice"); err != nil {
		t.Fatalf("mint: %v", err)
	}

	items, err := ledger.ItemsOwnedBy(ctx, "checking")
	if err != nil {
		t.Fatalf("items owned by: %v", err)
	}
	if len(items) != 3 || items[0].Item != "1" || items[2].Item != "3" {
		t.Fatalf("unexpected items %+v", items)
	}
	if count, _ := ledger.Count(ctx, "7"); count != 4 {
		t.Fatalf("expected 4 items, got %d", count)
	}
}

func TestAdapterOverSQLLedger_TeleportRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	base, err := sqlstore.NewLedgerFromPersistence(client)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	ledger, err := sqlstore.NewCachedLedger(base, newCacheService(t))
	if err != nil {
		t.Fatalf("new cached ledger: %v", err)
	}

	prefix := core.NewLocation(0, core.Junction{Kind: core.JunctionPalletInstance, Value: "50"})
	adapter, err := core.NewAdapter(core.Config{
		SentinelAccount: "checking",
		Tracking:        map[string]string{"1": "track_local"},
	}, ledger, matcher.NewGeneralIndexMatcher(prefix), location.Chain{location.AccountKey{}})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	asset := core.NonFungibleAsset(core.NewLocation(0,
		core.Junction{Kind: core.JunctionPalletInstance, Value: "50"},
		core.Junction{Kind: core.JunctionGeneralIndex, Value: "1"},
	), core.IndexInstance(42))
	dest := core.NewLocation(1, core.Junction{Kind: core.JunctionParachain, Value: "2000"})

	if err := adapter.CanCheckOut(ctx, dest, asset, core.ExecutionContext{}); err != nil {
		t.Fatalf("can check out: %v", err)
	}
	adapter.CheckOut(ctx, dest, asset, core.ExecutionContext{})
	if owner, _, _ := base.Owner(ctx, "1", "42"); owner != "checking" {
		t.Fatalf("expected sentinel to hold item, got %q", owner)
	}
	outstanding, err := adapter.Outstanding(ctx)
	if err != nil || len(outstanding) != 1 {
		t.Fatalf("expected one outstanding item, got %+v (%v)", outstanding, err)
	}

	if err := adapter.CanCheckIn(ctx, dest, asset, core.ExecutionContext{}); err != nil {
		t.Fatalf("can check in: %v", err)
	}
	adapter.CheckIn(ctx, dest, asset, core.ExecutionContext{})
	if _, owned, _ := base.Owner(ctx, "1", "42"); owned {
		t.Fatalf("expected item to be released")
	}
	if err := adapter.CanCheckIn(ctx, dest, asset, core.ExecutionContext{}); !core.IsCode(err, core.ErrorCodeNotWithdrawable) {
		t.Fatalf("expected second check in to be rejected, got %v", err)
	}

	alice := core.NewLocation(0, core.Junction{Kind: core.JunctionAccountKey, Value: "alice"})
	if err := adapter.DepositAsset(ctx, asset, alice, nil); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	bob := core.NewLocation(0, core.Junction{Kind: core.JunctionAccountKey, Value: "bob"})
	if _, err := adapter.TransferAsset(ctx, asset, alice, bob, core.ExecutionContext{}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := adapter.WithdrawAsset(ctx, asset, bob, nil); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if count, _ := base.Count(ctx, "1"); count != 0 {
		t.Fatalf("expected collection to be empty, got %d", count)
	}
}

func TestAdapterOverSQLLedger_OutstandingListsEveryCheckedOutItem(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	ledger, err := sqlstore.NewLedgerFromPersistence(client)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	prefix := core.NewLocation(0, core.Junction{Kind: core.JunctionPalletInstance, Value: "50"})
	adapter, err := core.NewAdapter(core.Config{
		SentinelAccount: "checking",
		Tracking:        map[string]string{"1": "track_local"},
	}, ledger, matcher.NewGeneralIndexMatcher(prefix), location.Chain{location.AccountKey{}})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	class := core.NewLocation(0,
		core.Junction{Kind: core.JunctionPalletInstance, Value: "50"},
		core.Junction{Kind: core.JunctionGeneralIndex, Value: "1"},
	)
	dest := core.NewLocation(1, core.Junction{Kind: core.JunctionParachain, Value: "2000"})
	const total = 30
	for i := 1; i <= total; i++ {
		asset := core.NonFungibleAsset(class, core.IndexInstance(uint64(i)))
		if err := adapter.CanCheckOut(ctx, dest, asset, core.ExecutionContext{}); err != nil {
			t.Fatalf("can check out %d: %v", i, err)
		}
		adapter.CheckOut(ctx, dest, asset, core.ExecutionContext{})
	}

	if count, err := ledger.Count(ctx, "1"); err != nil || count != total {
		t.Fatalf("expected sentinel to hold %d items, got %d (%v)", total, count, err)
	}
	owned, err := ledger.ItemsOwnedBy(ctx, "checking")
	if err != nil {
		t.Fatalf("items owned by: %v", err)
	}
	if len(owned) != total {
		t.Fatalf("expected %d owned items, got %d", total, len(owned))
	}
	outstanding, err := adapter.Outstanding(ctx)
	if err != nil {
		t.Fatalf("outstanding: %v", err)
	}
	if len(outstanding) != total {
		t.Fatalf("expected %d outstanding items, got %d", total, len(outstanding))
	}
	seen := map[core.ItemID]bool{}
	for _, ref := range outstanding {
		seen[ref.Item] = true
	}
	for i := 1; i <= total; i++ {
		if !seen[core.ItemID(strconv.Itoa(i))] {
			t.Fatalf("expected item %d in outstanding list", i)
		}
	}
}

func TestLedger_ConcurrentMintsKeepUniqueness(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	ledger, err := sqlstore.NewLedgerFromPersistence(client)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func(i int) {
			errs <- ledger.MintInto(ctx, "race", "1", core.AccountID("acct_"+strconv.Itoa(i)))
		}(i)
	}
	succeeded := 0
	for i := 0; i < 8; i++ {
		if err := <-errs; err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one mint to succeed, got %d", succeeded)
	}
}

func TestNewLedgerFrom_RejectsUnsupportedClients(t *testing.T) {
	if _, err := sqlstore.NewLedgerFrom(nil); err == nil {
		t.Fatalf("expected nil client error")
	}
	if _, err := sqlstore.NewLedgerFrom("not a db"); err == nil {
		t.Fatalf("expected unsupported client error")
	}
	if _, err := sqlstore.NewLedgerFromPersistence(nil); err == nil {
		t.Fatalf("expected nil persistence client error")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:nonfungibles-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	client, err := sqlstore.OpenPersistence(sqlstore.PersistenceConfig{
		Driver:         "sqlite3",
		DSN:            dsn,
		PingTimeout:    time.Second,
		OtelIdentifier: "go-nonfungibles-tests",
	})
	if err != nil {
		t.Fatalf("open persistence: %v", err)
	}
	if err := sqlstore.Migrate(context.Background(), client, migrations.DialectSQLite); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}

func newCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
