package core

import "sync"

type MintPolicyFunc func(collection CollectionID) TrackingMode

func (f MintPolicyFunc) Classify(collection CollectionID) TrackingMode {
	if f == nil {
		return TrackingUntracked
	}
	return f(collection)
}

// StaticMintPolicy classifies collections from a fixed table with a
// fallback mode for collections it does not list.
type StaticMintPolicy struct {
	mu       sync.RWMutex
	fallback TrackingMode
	modes    map[CollectionID]TrackingMode
}

func NewStaticMintPolicy(fallback TrackingMode) *StaticMintPolicy {
	if fallback == "" {
		fallback = TrackingUntracked
	}
	return &StaticMintPolicy{
		fallback: fallback,
		modes:    map[CollectionID]TrackingMode{},
	}
}

func (p *StaticMintPolicy) Set(collection CollectionID, mode TrackingMode) *StaticMintPolicy {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modes == nil {
		p.modes = map[CollectionID]TrackingMode{}
	}
	p.modes[collection] = mode
	return p
}

func (p *StaticMintPolicy) Classify(collection CollectionID) TrackingMode {
	if p == nil {
		return TrackingUntracked
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if mode, ok := p.modes[collection]; ok {
		return mode
	}
	if p.fallback == "" {
		return TrackingUntracked
	}
	return p.fallback
}

// UntrackedPolicy disables conservation checks for every collection.
var UntrackedPolicy MintPolicy = MintPolicyFunc(func(CollectionID) TrackingMode {
	return TrackingUntracked
})
