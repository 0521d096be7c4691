package location

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-nonfungibles/core"
)

func sibling(id string) core.Location {
	return core.NewLocation(1, core.Junction{Kind: core.JunctionParachain, Value: id})
}

func TestAccountKey(t *testing.T) {
	account, ok := AccountKey{}.ResolveAccount(core.NewLocation(0, core.Junction{Kind: core.JunctionAccountKey, Value: "alice"}))
	if !ok || account != "alice" {
		t.Fatalf("expected alice, got %q (%v)", account, ok)
	}
	for _, location := range []core.Location{
		core.Here(),
		core.NewLocation(1, core.Junction{Kind: core.JunctionAccountKey, Value: "alice"}),
		core.NewLocation(0, core.Junction{Kind: core.JunctionGeneralIndex, Value: "1"}),
		core.NewLocation(0, core.Junction{Kind: core.JunctionAccountKey, Value: " "}),
	} {
		if _, ok := (AccountKey{}).ResolveAccount(location); ok {
			t.Fatalf("expected %s to be rejected", location)
		}
	}
}

func TestParentIsPreset(t *testing.T) {
	resolver := ParentIsPreset{Account: "relay"}
	if account, ok := resolver.ResolveAccount(core.Parent()); !ok || account != "relay" {
		t.Fatalf("expected relay account, got %q", account)
	}
	if _, ok := resolver.ResolveAccount(sibling("2000")); ok {
		t.Fatalf("expected non-parent location to be rejected")
	}
	if _, ok := (ParentIsPreset{}).ResolveAccount(core.Parent()); ok {
		t.Fatalf("expected empty preset to resolve nothing")
	}
}

func TestHashedDescription_StableAndDistinct(t *testing.T) {
	resolver := NewHashedDescription()

	first, ok := resolver.ResolveAccount(sibling("2000"))
	if !ok {
		t.Fatalf("expected sibling to resolve")
	}
	again, _ := resolver.ResolveAccount(sibling("2000"))
	if first != again {
		t.Fatalf("expected deterministic account, got %q and %q", first, again)
	}
	if !strings.HasPrefix(string(first), "0x") || len(first) != 2+64 {
		t.Fatalf("expected 32 byte hex account, got %q", first)
	}
	other, _ := resolver.ResolveAccount(sibling("2001"))
	if other == first {
		t.Fatalf("expected distinct locations to yield distinct accounts")
	}

	keyed := HashedDescription{Key: DescriptionKey{1}}
	rekeyed, _ := keyed.ResolveAccount(sibling("2000"))
	if rekeyed == first {
		t.Fatalf("expected key to separate account domains")
	}
}

func TestHashedDescription_Allow(t *testing.T) {
	resolver := NewHashedDescription()
	resolver.Allow = func(location core.Location) bool { return location.Parents == 1 }
	if _, ok := resolver.ResolveAccount(core.Here()); ok {
		t.Fatalf("expected filtered location to be rejected")
	}
	if _, ok := resolver.ResolveAccount(sibling("1")); !ok {
		t.Fatalf("expected allowed location to resolve")
	}
}

func TestDescribe_NilAndEmptyInteriorMatch(t *testing.T) {
	withNil, err := Describe(core.Location{Parents: 1})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	withEmpty, err := Describe(core.Location{Parents: 1, Interior: []core.Junction{}})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !bytes.Equal(withNil, withEmpty) {
		t.Fatalf("expected nil and empty interiors to describe identically")
	}
}

func TestChain_FirstResolverWins(t *testing.T) {
	chain := Chain{nil, AccountKey{}, ParentIsPreset{Account: "relay"}, NewHashedDescription()}

	if account, _ := chain.ResolveAccount(core.NewLocation(0, core.Junction{Kind: core.JunctionAccountKey, Value: "bob"})); account != "bob" {
		t.Fatalf("expected account key resolver to win, got %q", account)
	}
	if account, _ := chain.ResolveAccount(core.Parent()); account != "relay" {
		t.Fatalf("expected parent preset, got %q", account)
	}
	if account, ok := chain.ResolveAccount(sibling("3000")); !ok || !strings.HasPrefix(string(account), "0x") {
		t.Fatalf("expected hashed fallback, got %q", account)
	}
	if _, ok := (Chain{AccountKey{}}).ResolveAccount(core.Parent()); ok {
		t.Fatalf("expected chain without a match to fail")
	}
}
