package nonfungibles

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-nonfungibles/core"
	"github.com/goliatone/go-nonfungibles/location"
	"github.com/goliatone/go-nonfungibles/matcher"
)

// MatcherPack contributes asset matchers for a family of collections.
type MatcherPack struct {
	Name     string
	Matchers []core.Matcher
}

// ResolverPack contributes location to account conversions.
type ResolverPack struct {
	Name      string
	Resolvers []core.AccountResolver
}

// ExtensionHooks collects matcher and resolver packs from independent
// packages and composes them in pack-name order.
type ExtensionHooks struct {
	mu sync.RWMutex

	matcherPacks  map[string]MatcherPack
	resolverPacks map[string]ResolverPack
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		matcherPacks:  map[string]MatcherPack{},
		resolverPacks: map[string]ResolverPack{},
	}
}

func (h *ExtensionHooks) RegisterMatcherPack(pack MatcherPack) error {
	if h == nil {
		return fmt.Errorf("nonfungibles: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("nonfungibles: matcher pack name is required")
	}
	if len(pack.Matchers) == 0 {
		return fmt.Errorf("nonfungibles: matcher pack %q has no matchers", name)
	}
	for _, m := range pack.Matchers {
		if m == nil {
			return fmt.Errorf("nonfungibles: matcher pack %q contains nil matcher", name)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.matcherPacks[name]; exists {
		return fmt.Errorf("nonfungibles: matcher pack %q already registered", name)
	}
	h.matcherPacks[name] = MatcherPack{
		Name:     name,
		Matchers: append([]core.Matcher(nil), pack.Matchers...),
	}
	return nil
}

func (h *ExtensionHooks) RegisterResolverPack(pack ResolverPack) error {
	if h == nil {
		return fmt.Errorf("nonfungibles: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("nonfungibles: resolver pack name is required")
	}
	if len(pack.Resolvers) == 0 {
		return fmt.Errorf("nonfungibles: resolver pack %q has no resolvers", name)
	}
	for _, r := range pack.Resolvers {
		if r == nil {
			return fmt.Errorf("nonfungibles: resolver pack %q contains nil resolver", name)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.resolverPacks[name]; exists {
		return fmt.Errorf("nonfungibles: resolver pack %q already registered", name)
	}
	h.resolverPacks[name] = ResolverPack{
		Name:      name,
		Resolvers: append([]core.AccountResolver(nil), pack.Resolvers...),
	}
	return nil
}

// Matcher returns every registered matcher as one chain; the first match
// wins.
func (h *ExtensionHooks) Matcher() matcher.Chain {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out matcher.Chain
	for _, name := range sortedKeys(h.matcherPacks) {
		out = append(out, h.matcherPacks[name].Matchers...)
	}
	return out
}

func (h *ExtensionHooks) Resolver() location.Chain {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out location.Chain
	for _, name := range sortedKeys(h.resolverPacks) {
		out = append(out, h.resolverPacks[name].Resolvers...)
	}
	return out
}

func (h *ExtensionHooks) PackNames() (matchers []string, resolvers []string) {
	if h == nil {
		return nil, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.matcherPacks), sortedKeys(h.resolverPacks)
}

// NewAdapter builds an adapter over ledger using the composed matcher and
// resolver chains.
func (h *ExtensionHooks) NewAdapter(cfg Config, ledger Ledger, opts ...Option) (*Adapter, error) {
	if h == nil {
		return nil, fmt.Errorf("nonfungibles: extension hooks are nil")
	}
	matchers := h.Matcher()
	if len(matchers) == 0 {
		return nil, fmt.Errorf("nonfungibles: no matcher packs registered")
	}
	resolvers := h.Resolver()
	if len(resolvers) == 0 {
		return nil, fmt.Errorf("nonfungibles: no resolver packs registered")
	}
	return core.NewAdapter(cfg, ledger, matchers, resolvers, opts...)
}

func sortedKeys[V any](values map[string]V) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
