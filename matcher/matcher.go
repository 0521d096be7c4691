// Package matcher provides Matcher implementations that map asset
// descriptors onto ledger collections and items.
package matcher

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-nonfungibles/core"
)

// ItemFromInstance converts an asset instance into a ledger item id. Index
// instances become their decimal form and array instances their 0x-prefixed
// hex form. Undefined instances have no item id.
func ItemFromInstance(instance core.AssetInstance) (core.ItemID, bool) {
	switch instance.Kind {
	case core.InstanceIndex:
		return core.ItemID(instance.String()), true
	case core.InstanceArray:
		if len(instance.Data) == 0 {
			return "", false
		}
		return core.ItemID(instance.String()), true
	default:
		return "", false
	}
}

// GeneralIndexMatcher handles classes located at Prefix followed by a single
// general_index junction, whose value names the collection.
type GeneralIndexMatcher struct {
	Prefix core.Location
}

func NewGeneralIndexMatcher(prefix core.Location) GeneralIndexMatcher {
	return GeneralIndexMatcher{Prefix: core.NewLocation(prefix.Parents, prefix.Interior...)}
}

func (m GeneralIndexMatcher) MatchNonFungible(what core.Asset) (core.CollectionID, core.ItemID, error) {
	if !what.Fun.NonFungible() {
		return "", "", core.AssetNotHandledError(what)
	}
	if !what.ID.StartsWith(m.Prefix) || len(what.ID.Interior) != len(m.Prefix.Interior)+1 {
		return "", "", core.AssetNotHandledError(what)
	}
	last, _ := what.ID.Last()
	if last.Kind != core.JunctionGeneralIndex || strings.TrimSpace(last.Value) == "" {
		return "", "", core.AssetNotHandledError(what)
	}
	item, ok := ItemFromInstance(*what.Fun.Instance)
	if !ok {
		return "", "", core.AssetNotHandledError(what)
	}
	return core.CollectionID(last.Value), item, nil
}

// ClassMatcher handles an explicit table of class locations.
type ClassMatcher struct {
	mu      sync.RWMutex
	classes map[string]core.CollectionID
}

func NewClassMatcher() *ClassMatcher {
	return &ClassMatcher{classes: map[string]core.CollectionID{}}
}

// Register maps the class at location to collection. A location can only be
// registered once.
func (m *ClassMatcher) Register(location core.Location, collection core.CollectionID) error {
	if m == nil {
		return fmt.Errorf("matcher: class matcher is nil")
	}
	if strings.TrimSpace(string(collection)) == "" {
		return core.BadInputError("matcher: collection is required")
	}
	key := location.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.classes == nil {
		m.classes = map[string]core.CollectionID{}
	}
	if existing, ok := m.classes[key]; ok {
		return core.BadInputError(fmt.Sprintf("matcher: class %s already registered as %s", key, existing))
	}
	m.classes[key] = collection
	return nil
}

func (m *ClassMatcher) MatchNonFungible(what core.Asset) (core.CollectionID, core.ItemID, error) {
	if m == nil || !what.Fun.NonFungible() {
		return "", "", core.AssetNotHandledError(what)
	}
	m.mu.RLock()
	collection, ok := m.classes[what.ID.String()]
	m.mu.RUnlock()
	if !ok {
		return "", "", core.AssetNotHandledError(what)
	}
	item, ok := ItemFromInstance(*what.Fun.Instance)
	if !ok {
		return "", "", core.AssetNotHandledError(what)
	}
	return collection, item, nil
}

// Chain tries each matcher in order and returns the first match. Errors other
// than AssetNotHandled stop the search.
type Chain []core.Matcher

func (c Chain) MatchNonFungible(what core.Asset) (core.CollectionID, core.ItemID, error) {
	for _, m := range c {
		if m == nil {
			continue
		}
		collection, item, err := m.MatchNonFungible(what)
		if core.IsAssetNotHandled(err) {
			continue
		}
		return collection, item, err
	}
	return "", "", core.AssetNotHandledError(what)
}

var (
	_ core.Matcher = GeneralIndexMatcher{}
	_ core.Matcher = (*ClassMatcher)(nil)
	_ core.Matcher = Chain(nil)
)
