package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ MintPolicy      = (*StaticMintPolicy)(nil)
	_ MintPolicy      = MintPolicyFunc(nil)
	_ Matcher         = MatcherFunc(nil)
	_ AccountResolver = AccountResolverFunc(nil)
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}
	_ MetricsRecorder = NopMetricsRecorder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
