package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidTrackingMode = errors.New("core: invalid tracking mode")
	ErrInvalidItemRef      = errors.New("core: invalid item reference")
)

type CollectionID string

type ItemID string

type AccountID string

// ItemRef is the identity of a single non-fungible item.
type ItemRef struct {
	Collection CollectionID
	Item       ItemID
}

func (r ItemRef) Validate() error {
	if strings.TrimSpace(string(r.Collection)) == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidItemRef)
	}
	if strings.TrimSpace(string(r.Item)) == "" {
		return fmt.Errorf("%w: empty item", ErrInvalidItemRef)
	}
	return nil
}

func (r ItemRef) String() string {
	return string(r.Collection) + "/" + string(r.Item)
}

// TrackingMode selects which side of a teleport is authoritative for a
// collection.
type TrackingMode string

const (
	// TrackingUntracked disables conservation checks for the collection.
	TrackingUntracked TrackingMode = "untracked"
	// TrackingLocal marks this ledger as the home of the collection:
	// outbound teleports accrue into the sentinel, inbound ones reduce it.
	TrackingLocal TrackingMode = "track_local"
	// TrackingNonLocal marks a foreign home: inbound teleports accrue into
	// the sentinel, outbound ones reduce it.
	TrackingNonLocal TrackingMode = "track_non_local"
)

func ParseTrackingMode(raw string) (TrackingMode, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", string(TrackingUntracked), "none":
		return TrackingUntracked, nil
	case string(TrackingLocal), "local":
		return TrackingLocal, nil
	case string(TrackingNonLocal), "non_local", "nonlocal":
		return TrackingNonLocal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTrackingMode, raw)
	}
}

func (m TrackingMode) Tracked() bool {
	return m == TrackingLocal || m == TrackingNonLocal
}

// Sentinel is the optional checking account used as the teleport escrow
// counter. The zero value means tracking is disabled.
type Sentinel struct {
	account AccountID
	set     bool
}

func NewSentinel(account AccountID) Sentinel {
	account = AccountID(strings.TrimSpace(string(account)))
	if account == "" {
		return Sentinel{}
	}
	return Sentinel{account: account, set: true}
}

func NoSentinel() Sentinel {
	return Sentinel{}
}

func (s Sentinel) Get() (AccountID, bool) {
	return s.account, s.set
}

func (s Sentinel) String() string {
	if !s.set {
		return "<none>"
	}
	return string(s.account)
}

type JunctionKind string

const (
	JunctionParachain       JunctionKind = "parachain"
	JunctionAccountKey      JunctionKind = "account_key"
	JunctionPalletInstance  JunctionKind = "pallet_instance"
	JunctionGeneralIndex    JunctionKind = "general_index"
	JunctionGeneralKey      JunctionKind = "general_key"
	JunctionGlobalConsensus JunctionKind = "global_consensus"
)

type Junction struct {
	Kind  JunctionKind `cbor:"1,keyasint"`
	Value string       `cbor:"2,keyasint"`
}

func (j Junction) String() string {
	return string(j.Kind) + "(" + j.Value + ")"
}

// Location is a relative path through the consensus hierarchy: Parents
// steps up, then Interior steps down.
type Location struct {
	Parents  uint8      `cbor:"1,keyasint"`
	Interior []Junction `cbor:"2,keyasint"`
}

func Here() Location {
	return Location{}
}

func Parent() Location {
	return Location{Parents: 1}
}

func NewLocation(parents uint8, interior ...Junction) Location {
	return Location{Parents: parents, Interior: append([]Junction(nil), interior...)}
}

func (l Location) IsHere() bool {
	return l.Parents == 0 && len(l.Interior) == 0
}

// Last returns the final interior junction, if any.
func (l Location) Last() (Junction, bool) {
	if len(l.Interior) == 0 {
		return Junction{}, false
	}
	return l.Interior[len(l.Interior)-1], true
}

// StartsWith reports whether prefix is an ancestor of (or equal to) l.
func (l Location) StartsWith(prefix Location) bool {
	if l.Parents != prefix.Parents || len(prefix.Interior) > len(l.Interior) {
		return false
	}
	for i, junction := range prefix.Interior {
		if l.Interior[i] != junction {
			return false
		}
	}
	return true
}

func (l Location) Equal(other Location) bool {
	return l.Parents == other.Parents && len(l.Interior) == len(other.Interior) && l.StartsWith(other)
}

func (l Location) String() string {
	parts := make([]string, 0, int(l.Parents)+len(l.Interior))
	for i := 0; i < int(l.Parents); i++ {
		parts = append(parts, "..")
	}
	for _, junction := range l.Interior {
		parts = append(parts, junction.String())
	}
	if len(parts) == 0 {
		return "here"
	}
	return strings.Join(parts, "/")
}

type InstanceKind string

const (
	InstanceUndefined InstanceKind = "undefined"
	InstanceIndex     InstanceKind = "index"
	InstanceArray     InstanceKind = "array"
)

// AssetInstance identifies one item inside a non-fungible class.
type AssetInstance struct {
	Kind  InstanceKind
	Index uint64
	Data  []byte
}

func IndexInstance(index uint64) AssetInstance {
	return AssetInstance{Kind: InstanceIndex, Index: index}
}

func ArrayInstance(data []byte) AssetInstance {
	return AssetInstance{Kind: InstanceArray, Data: append([]byte(nil), data...)}
}

func (i AssetInstance) String() string {
	switch i.Kind {
	case InstanceIndex:
		return strconv.FormatUint(i.Index, 10)
	case InstanceArray:
		return "0x" + hex.EncodeToString(i.Data)
	default:
		return string(InstanceUndefined)
	}
}

// Fungibility is either an amount (fungible) or an instance (non-fungible).
type Fungibility struct {
	Amount   uint64
	Instance *AssetInstance
}

func (f Fungibility) NonFungible() bool {
	return f.Instance != nil
}

// Asset is the descriptor the execution engine hands to a transactor.
type Asset struct {
	ID  Location
	Fun Fungibility
}

func NonFungibleAsset(id Location, instance AssetInstance) Asset {
	return Asset{ID: id, Fun: Fungibility{Instance: &instance}}
}

func FungibleAsset(id Location, amount uint64) Asset {
	return Asset{ID: id, Fun: Fungibility{Amount: amount}}
}

func (a Asset) String() string {
	if a.Fun.Instance != nil {
		return a.ID.String() + "#" + a.Fun.Instance.String()
	}
	return a.ID.String() + "x" + strconv.FormatUint(a.Fun.Amount, 10)
}

// MovedAssets is what an operation reports as having changed hands.
type MovedAssets struct {
	Assets []Asset
}

func MovedAssetsOf(assets ...Asset) MovedAssets {
	return MovedAssets{Assets: append([]Asset(nil), assets...)}
}

func (m MovedAssets) IsEmpty() bool {
	return len(m.Assets) == 0
}

// ExecutionContext carries diagnostic information about the enclosing
// message execution. It never influences control flow.
type ExecutionContext struct {
	Origin    *Location
	MessageID string
	Topic     string
}

func (c ExecutionContext) fields() map[string]any {
	fields := map[string]any{}
	if c.Origin != nil {
		fields["context_origin"] = c.Origin.String()
	}
	if strings.TrimSpace(c.MessageID) != "" {
		fields["message_id"] = c.MessageID
	}
	if strings.TrimSpace(c.Topic) != "" {
		fields["topic"] = c.Topic
	}
	return fields
}
