package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewAdapter_DefaultDependencies(t *testing.T) {
	adapter, err := NewAdapter(Config{}, NewMemoryLedger(), testMatcher, testResolver)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if got := adapter.Config().Name; got != "nonfungibles" {
		t.Fatalf("expected default name, got %q", got)
	}
	if _, ok := adapter.Sentinel().Get(); ok {
		t.Fatalf("expected no sentinel by default")
	}
	if mode := adapter.Policy().Classify("any"); mode != TrackingUntracked {
		t.Fatalf("expected untracked default policy, got %q", mode)
	}
}

func TestNewAdapter_RequiresCollaborators(t *testing.T) {
	if _, err := NewAdapter(Config{}, nil, testMatcher, testResolver); err == nil {
		t.Fatalf("expected missing ledger error")
	}
	if _, err := NewAdapter(Config{}, NewMemoryLedger(), nil, testResolver); err == nil {
		t.Fatalf("expected missing matcher error")
	}
	if _, err := NewAdapter(Config{}, NewMemoryLedger(), testMatcher, nil); err == nil {
		t.Fatalf("expected missing resolver error")
	}
}

func TestNewAdapter_RuntimeConfigBuildsPolicyAndSentinel(t *testing.T) {
	adapter, err := NewAdapter(Config{
		SentinelAccount: "checking",
		DefaultTracking: "track_non_local",
		Tracking:        map[string]string{"1": "track_local"},
	}, NewMemoryLedger(), testMatcher, testResolver)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if account, ok := adapter.Sentinel().Get(); !ok || account != "checking" {
		t.Fatalf("expected configured sentinel, got %q", account)
	}
	if mode := adapter.Policy().Classify("1"); mode != TrackingLocal {
		t.Fatalf("expected listed collection to be local, got %q", mode)
	}
	if mode := adapter.Policy().Classify("2"); mode != TrackingNonLocal {
		t.Fatalf("expected fallback mode, got %q", mode)
	}
}

func TestNewAdapter_LoadedConfigLayersUnderRuntime(t *testing.T) {
	loader := mapRawLoader{values: map[string]any{
		"name":             "from-file",
		"sentinel_account": "file-checking",
		"tracking":         map[string]any{"9": "track_local"},
	}}
	adapter, err := NewAdapter(Config{Name: "runtime"}, NewMemoryLedger(), testMatcher, testResolver,
		WithConfigProvider(NewCfgxConfigProvider(loader)),
	)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	cfg := adapter.Config()
	if cfg.Name != "runtime" {
		t.Fatalf("expected runtime name to win, got %q", cfg.Name)
	}
	if cfg.SentinelAccount != "file-checking" {
		t.Fatalf("expected loaded sentinel, got %q", cfg.SentinelAccount)
	}
	if mode := adapter.Policy().Classify("9"); mode != TrackingLocal {
		t.Fatalf("expected loaded tracking entry, got %q", mode)
	}
}

func TestNewAdapter_WithXOverrides(t *testing.T) {
	policy := NewStaticMintPolicy(TrackingLocal)
	adapter, err := NewAdapter(Config{SentinelAccount: "runtime"}, NewMemoryLedger(), testMatcher, testResolver,
		WithConfigProvider(&fixedConfigProvider{cfg: Config{Name: "from-provider"}}),
		WithOptionsResolver(&fixedOptionsResolver{cfg: Config{Name: "resolved", DefaultTracking: "untracked"}}),
		WithMintPolicy(policy),
		WithSentinel(NewSentinel("override")),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
	)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if adapter.Config().Name != "resolved" {
		t.Fatalf("expected options resolver result, got %q", adapter.Config().Name)
	}
	if adapter.Policy() != MintPolicy(policy) {
		t.Fatalf("expected mint policy override")
	}
	if account, _ := adapter.Sentinel().Get(); account != "override" {
		t.Fatalf("expected sentinel override, got %q", account)
	}
}

func TestNewAdapter_InvalidConfigIsMapped(t *testing.T) {
	_, err := NewAdapter(Config{DefaultTracking: "sometimes"}, NewMemoryLedger(), testMatcher, testResolver)
	if err == nil {
		t.Fatalf("expected invalid tracking mode to fail")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
}

func TestNewAdapter_LoaderFailureUsesCustomMapper(t *testing.T) {
	sentinel := errors.New("sentinel")
	mapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	_, err := NewAdapter(Config{}, NewMemoryLedger(), testMatcher, testResolver,
		WithConfigProvider(NewCfgxConfigProvider(mapRawLoader{err: errors.New("disk")})),
		WithErrorMapper(mapper),
	)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Message != "mapped" {
		t.Fatalf("expected mapped error, got %v", err)
	}
}

func TestStaticConfig_CopiesValues(t *testing.T) {
	loader := StaticConfig(map[string]any{"name": "static"})
	raw, err := loader.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	raw["name"] = "changed"
	again, _ := loader.LoadRaw(context.Background())
	if again["name"] != "static" {
		t.Fatalf("expected LoadRaw to return a copy")
	}
}

func TestConfigMintPolicy_IgnoresInvalidEntries(t *testing.T) {
	cfg := Config{DefaultTracking: "bogus", Tracking: map[string]string{" 1 ": "local", "2": "bogus"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
	policy := cfg.MintPolicy()
	if policy.Classify("1") != TrackingLocal {
		t.Fatalf("expected trimmed collection key")
	}
	if policy.Classify("2") != TrackingUntracked || policy.Classify("3") != TrackingUntracked {
		t.Fatalf("expected invalid entries to fall back to untracked")
	}
}
