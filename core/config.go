package core

import (
	"fmt"
	"strings"
)

type Config struct {
	Name            string            `koanf:"name" mapstructure:"name"`
	SentinelAccount string            `koanf:"sentinel_account" mapstructure:"sentinel_account"`
	DefaultTracking string            `koanf:"default_tracking" mapstructure:"default_tracking"`
	Tracking        map[string]string `koanf:"tracking" mapstructure:"tracking"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "nonfungibles",
		DefaultTracking: string(TrackingUntracked),
		Tracking:        map[string]string{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("core: name is required")
	}
	if _, err := ParseTrackingMode(c.DefaultTracking); err != nil {
		return fmt.Errorf("core: default_tracking: %w", err)
	}
	for collection, mode := range c.Tracking {
		if strings.TrimSpace(collection) == "" {
			return fmt.Errorf("core: tracking entry with empty collection is invalid")
		}
		if _, err := ParseTrackingMode(mode); err != nil {
			return fmt.Errorf("core: tracking[%s]: %w", collection, err)
		}
	}
	return nil
}

// Sentinel returns the configured checking account; an empty
// sentinel_account disables tracking.
func (c Config) Sentinel() Sentinel {
	return NewSentinel(AccountID(c.SentinelAccount))
}

// MintPolicy builds the static per-collection policy described by the
// config. Invalid modes fall back to untracked; Validate reports them.
func (c Config) MintPolicy() *StaticMintPolicy {
	fallback, err := ParseTrackingMode(c.DefaultTracking)
	if err != nil {
		fallback = TrackingUntracked
	}
	policy := NewStaticMintPolicy(fallback)
	for collection, raw := range c.Tracking {
		mode, err := ParseTrackingMode(raw)
		if err != nil {
			continue
		}
		policy.Set(CollectionID(strings.TrimSpace(collection)), mode)
	}
	return policy
}
