// Package location converts consensus locations into ledger accounts.
package location

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goliatone/go-nonfungibles/core"
	"github.com/zeebo/blake3"
)

// AccountKey resolves a local location made of exactly one account_key
// junction.
type AccountKey struct{}

func (AccountKey) ResolveAccount(location core.Location) (core.AccountID, bool) {
	if location.Parents != 0 || len(location.Interior) != 1 {
		return "", false
	}
	junction := location.Interior[0]
	if junction.Kind != core.JunctionAccountKey || strings.TrimSpace(junction.Value) == "" {
		return "", false
	}
	return core.AccountID(junction.Value), true
}

// ParentIsPreset resolves the parent location to a fixed account.
type ParentIsPreset struct {
	Account core.AccountID
}

func (p ParentIsPreset) ResolveAccount(location core.Location) (core.AccountID, bool) {
	if strings.TrimSpace(string(p.Account)) == "" || !location.Equal(core.Parent()) {
		return "", false
	}
	return p.Account, true
}

// DescriptionKey is the blake3 key used by HashedDescription. It is the
// ASCII domain name zero-padded to 32 bytes.
type DescriptionKey [32]byte

var DefaultDescriptionKey = DescriptionKey{
	'n', 'o', 'n', 'f', 'u', 'n', 'g', 'i', 'b', 'l', 'e', 's', '.',
	'l', 'o', 'c', 'a', 't', 'i', 'o', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var descriptionEncMode cbor.EncMode

func init() {
	var err error
	descriptionEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("location: CBOR encoder initialization failed: " + err.Error())
	}
}

type description struct {
	Domain   string        `cbor:"1,keyasint"`
	Location core.Location `cbor:"2,keyasint"`
}

// HashedDescription derives a stable account for any location accepted by
// Allow (all locations when Allow is nil). The account is the keyed blake3
// hash of the location's deterministic CBOR description, hex encoded.
type HashedDescription struct {
	Key   DescriptionKey
	Allow func(core.Location) bool
}

func NewHashedDescription() HashedDescription {
	return HashedDescription{Key: DefaultDescriptionKey}
}

// Describe returns the canonical bytes hashed for location.
func Describe(location core.Location) ([]byte, error) {
	interior := location.Interior
	if interior == nil {
		interior = []core.Junction{}
	}
	payload, err := descriptionEncMode.Marshal(description{
		Domain:   "location",
		Location: core.Location{Parents: location.Parents, Interior: interior},
	})
	if err != nil {
		return nil, fmt.Errorf("location: describe %s: %w", location, err)
	}
	return payload, nil
}

func (h HashedDescription) ResolveAccount(location core.Location) (core.AccountID, bool) {
	if h.Allow != nil && !h.Allow(location) {
		return "", false
	}
	payload, err := Describe(location)
	if err != nil {
		return "", false
	}
	hasher, err := blake3.NewKeyed(h.Key[:])
	if err != nil {
		return "", false
	}
	_, _ = hasher.Write(payload)
	return core.AccountID("0x" + hex.EncodeToString(hasher.Sum(nil))), true
}

// Chain returns the account from the first resolver that accepts the
// location.
type Chain []core.AccountResolver

func (c Chain) ResolveAccount(location core.Location) (core.AccountID, bool) {
	for _, resolver := range c {
		if resolver == nil {
			continue
		}
		if account, ok := resolver.ResolveAccount(location); ok {
			return account, true
		}
	}
	return "", false
}

var (
	_ core.AccountResolver = AccountKey{}
	_ core.AccountResolver = ParentIsPreset{}
	_ core.AccountResolver = HashedDescription{}
	_ core.AccountResolver = Chain(nil)
)
