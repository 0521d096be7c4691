package nonfungibles

import (
	"github.com/goliatone/go-nonfungibles/core"
	"github.com/goliatone/go-nonfungibles/location"
	"github.com/goliatone/go-nonfungibles/matcher"
)

type Config = core.Config

type Option = core.Option

type Adapter = core.Adapter
type TransferAdapter = core.TransferAdapter
type MutateAdapter = core.MutateAdapter
type Transactor = core.Transactor
type Transactors = core.Transactors

type Ledger = core.Ledger
type Matcher = core.Matcher
type AccountResolver = core.AccountResolver
type MintPolicy = core.MintPolicy
type Sentinel = core.Sentinel
type TrackingMode = core.TrackingMode
type InvariantViolation = core.InvariantViolation
type InvariantHandler = core.InvariantHandler

type Asset = core.Asset
type Location = core.Location
type Junction = core.Junction
type ItemRef = core.ItemRef
type MovedAssets = core.MovedAssets
type ExecutionContext = core.ExecutionContext

const (
	TrackingUntracked = core.TrackingUntracked
	TrackingLocal     = core.TrackingLocal
	TrackingNonLocal  = core.TrackingNonLocal
)

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithTracer           = core.WithTracer
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithInvariantHandler = core.WithInvariantHandler
	WithMintPolicy       = core.WithMintPolicy
	WithSentinel         = core.WithSentinel
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewAdapter(cfg Config, ledger Ledger, m Matcher, resolver AccountResolver, opts ...Option) (*Adapter, error) {
	return core.NewAdapter(cfg, ledger, m, resolver, opts...)
}

func NewMemoryLedger() *core.MemoryLedger {
	return core.NewMemoryLedger()
}

// NewGeneralIndexMatcher matches assets under prefix whose last junction is
// a general index naming the collection.
func NewGeneralIndexMatcher(prefix Location) Matcher {
	return matcher.NewGeneralIndexMatcher(prefix)
}

// DefaultResolver resolves local account keys first and falls back to a
// hashed description of any other location.
func DefaultResolver() AccountResolver {
	return location.Chain{location.AccountKey{}, location.NewHashedDescription()}
}
