package core

import (
	"context"
	"strconv"
	"sync"
	"testing"
)

const (
	testSentinel AccountID = "checking"
	testAlice    AccountID = "alice"
	testBob      AccountID = "bob"
)

var (
	testClassPrefix = NewLocation(0, Junction{Kind: JunctionPalletInstance, Value: "50"})
	testDest        = NewLocation(1, Junction{Kind: JunctionParachain, Value: "2000"})
)

// testMatcher handles <prefix>/general_index(<collection>) classes with an
// index instance.
var testMatcher = MatcherFunc(func(what Asset) (CollectionID, ItemID, error) {
	if !what.Fun.NonFungible() || !what.ID.StartsWith(testClassPrefix) {
		return "", "", AssetNotHandledError(what)
	}
	last, ok := what.ID.Last()
	if !ok || last.Kind != JunctionGeneralIndex || len(what.ID.Interior) != len(testClassPrefix.Interior)+1 {
		return "", "", AssetNotHandledError(what)
	}
	if what.Fun.Instance.Kind != InstanceIndex {
		return "", "", AssetNotHandledError(what)
	}
	return CollectionID(last.Value), ItemID(strconv.FormatUint(what.Fun.Instance.Index, 10)), nil
})

// testResolver maps a single account_key junction to that account.
var testResolver = AccountResolverFunc(func(location Location) (AccountID, bool) {
	if location.Parents != 0 || len(location.Interior) != 1 {
		return "", false
	}
	if location.Interior[0].Kind != JunctionAccountKey {
		return "", false
	}
	return AccountID(location.Interior[0].Value), true
})

func testAsset(collection string, item uint64) Asset {
	id := NewLocation(0,
		Junction{Kind: JunctionPalletInstance, Value: "50"},
		Junction{Kind: JunctionGeneralIndex, Value: collection},
	)
	return NonFungibleAsset(id, IndexInstance(item))
}

func accountLocation(account AccountID) Location {
	return NewLocation(0, Junction{Kind: JunctionAccountKey, Value: string(account)})
}

// spyLedger wraps a MemoryLedger, counts calls and can inject failures.
type spyLedger struct {
	*MemoryLedger
	mu        sync.Mutex
	calls     map[string]int
	failMint  error
	failBurn  error
	failOwner error
}

func newSpyLedger() *spyLedger {
	return &spyLedger{MemoryLedger: NewMemoryLedger(), calls: map[string]int{}}
}

func (s *spyLedger) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
}

func (s *spyLedger) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spyLedger) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, value := range s.calls {
		total += value
	}
	return total
}

func (s *spyLedger) Owner(ctx context.Context, collection CollectionID, item ItemID) (AccountID, bool, error) {
	s.record("owner")
	if s.failOwner != nil {
		return "", false, s.failOwner
	}
	return s.MemoryLedger.Owner(ctx, collection, item)
}

func (s *spyLedger) CanTransfer(ctx context.Context, collection CollectionID, item ItemID) (bool, error) {
	s.record("can_transfer")
	return s.MemoryLedger.CanTransfer(ctx, collection, item)
}

func (s *spyLedger) MintInto(ctx context.Context, collection CollectionID, item ItemID, who AccountID) error {
	s.record("mint")
	if s.failMint != nil {
		return s.failMint
	}
	return s.MemoryLedger.MintInto(ctx, collection, item, who)
}

func (s *spyLedger) Burn(ctx context.Context, collection CollectionID, item ItemID, expectedOwner *AccountID) error {
	s.record("burn")
	if s.failBurn != nil {
		return s.failBurn
	}
	return s.MemoryLedger.Burn(ctx, collection, item, expectedOwner)
}

func (s *spyLedger) Transfer(ctx context.Context, collection CollectionID, item ItemID, destination AccountID) error {
	s.record("transfer")
	return s.MemoryLedger.Transfer(ctx, collection, item, destination)
}

func newTestAdapter(t *testing.T, ledger Ledger, modes map[CollectionID]TrackingMode, opts ...Option) *Adapter {
	t.Helper()
	policy := NewStaticMintPolicy(TrackingUntracked)
	for collection, mode := range modes {
		policy.Set(collection, mode)
	}
	options := append([]Option{
		WithMintPolicy(policy),
		WithSentinel(NewSentinel(testSentinel)),
		WithLogger(stubLogger{}),
	}, opts...)
	adapter, err := NewAdapter(DefaultConfig(), ledger, testMatcher, testResolver, options...)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

func mustOwner(t *testing.T, ledger Inspector, collection CollectionID, item ItemID) (AccountID, bool) {
	t.Helper()
	owner, ok, err := ledger.Owner(context.Background(), collection, item)
	if err != nil {
		t.Fatalf("owner %s/%s: %v", collection, item, err)
	}
	return owner, ok
}

func expectPanic(t *testing.T, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("expected panic")
		}
	}()
	fn()
	return nil
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
	err    error
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.values, nil
}
