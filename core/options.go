package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	loggerName = "nonfungibles"
	tracerName = "github.com/goliatone/go-nonfungibles"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type adapterBuilder struct {
	runtimeConfig    Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	tracer           trace.Tracer
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	invariantHandler InvariantHandler
	mintPolicy       MintPolicy
	sentinel         *Sentinel
}

type Option func(*adapterBuilder)

func WithLogger(logger Logger) Option {
	return func(b *adapterBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *adapterBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *adapterBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(b *adapterBuilder) {
		b.tracer = tracer
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *adapterBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *adapterBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *adapterBuilder) {
		b.optionsResolver = resolver
	}
}

func WithInvariantHandler(handler InvariantHandler) Option {
	return func(b *adapterBuilder) {
		b.invariantHandler = handler
	}
}

// WithMintPolicy replaces the policy derived from Config.
func WithMintPolicy(policy MintPolicy) Option {
	return func(b *adapterBuilder) {
		b.mintPolicy = policy
	}
}

// WithSentinel replaces the sentinel derived from Config. Passing
// NoSentinel() disables tracking even if the config names an account.
func WithSentinel(sentinel Sentinel) Option {
	return func(b *adapterBuilder) {
		b.sentinel = &sentinel
	}
}

// settings is the resolved, immutable configuration shared by the
// transfer and mutate adapters.
type settings struct {
	config           Config
	logger           Logger
	metricsRecorder  MetricsRecorder
	tracer           trace.Tracer
	invariantHandler InvariantHandler
	mintPolicy       MintPolicy
	sentinel         Sentinel
}

func defaultAdapterBuilder(runtime Config) adapterBuilder {
	return adapterBuilder{
		runtimeConfig:   runtime,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func resolveSettings(cfg Config, options ...Option) (settings, error) {
	builder := defaultAdapterBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil && builder.loggerProvider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.tracer == nil {
		builder.tracer = otel.Tracer(tracerName)
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return settings{}, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return settings{}, mapBuildError(builder.errorMapper, err)
	}

	out := settings{
		config:           finalConfig,
		logger:           logger,
		metricsRecorder:  builder.metricsRecorder,
		tracer:           builder.tracer,
		invariantHandler: builder.invariantHandler,
		mintPolicy:       builder.mintPolicy,
		sentinel:         finalConfig.Sentinel(),
	}
	if out.invariantHandler == nil {
		out.invariantHandler = PanicOnInvariantViolation
	}
	if out.mintPolicy == nil {
		out.mintPolicy = finalConfig.MintPolicy()
	}
	if builder.sentinel != nil {
		out.sentinel = *builder.sentinel
	}
	return out, nil
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfig returns a RawConfigLoader serving fixed values, handy for
// embedding hosts that already parsed their configuration.
func StaticConfig(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Name) != "" {
		layer["name"] = cfg.Name
	}
	if includeZero || strings.TrimSpace(cfg.SentinelAccount) != "" {
		layer["sentinel_account"] = cfg.SentinelAccount
	}
	if includeZero || strings.TrimSpace(cfg.DefaultTracking) != "" {
		layer["default_tracking"] = cfg.DefaultTracking
	}
	if includeZero || len(cfg.Tracking) > 0 {
		tracking := make(map[string]any, len(cfg.Tracking))
		for key, value := range cfg.Tracking {
			tracking[key] = value
		}
		layer["tracking"] = tracking
	}
	return layer
}
