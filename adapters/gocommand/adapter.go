package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	nfcommand "github.com/goliatone/go-nonfungibles/command"
	"github.com/goliatone/go-nonfungibles/core"
	nfquery "github.com/goliatone/go-nonfungibles/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) register(handler any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(handler)
}

// AddQueueResolver mirrors every registered command into queueRegistry on
// Initialize so transfers can also be driven from a job queue.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

// Transactor is what the bus handlers drive.
type Transactor interface {
	core.Transactor
	Outstanding(ctx context.Context) ([]core.ItemRef, error)
	Policy() core.MintPolicy
}

// Handlers groups the dependencies behind every nonfungibles message.
type Handlers struct {
	Transactor Transactor
	Inspector  core.Inspector
	Matcher    core.Matcher
}

// Subscriptions tracks dispatcher subscriptions created by Register.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// Register subscribes and registers the transfer, teleport, deposit and
// withdraw commands. The read queries are only subscribed on the dispatcher;
// the registry holds commands alone so its resolvers can mirror every entry
// into a job queue. Queries whose dependency is nil are skipped. On error
// every subscription made so far is released.
func Register(adapter *RegistryAdapter, handlers Handlers, runnerOpts ...runner.Option) (Subscriptions, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if handlers.Transactor == nil {
		return nil, fmt.Errorf("gocommand: transactor is required")
	}

	var subs Subscriptions
	track := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			subs.Unsubscribe()
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	tx := handlers.Transactor
	if err := track(registerCommand(adapter, nfcommand.NewTransferCommand(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerCommand(adapter, nfcommand.NewCheckInCommand(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerCommand(adapter, nfcommand.NewCheckOutCommand(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerCommand(adapter, nfcommand.NewDepositCommand(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerCommand(adapter, nfcommand.NewWithdrawCommand(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerQuery(nfquery.NewOutstandingQuery(tx), runnerOpts...)); err != nil {
		return nil, err
	}
	if err := track(registerQuery(nfquery.NewTrackingModeQuery(tx.Policy()), runnerOpts...)); err != nil {
		return nil, err
	}
	if handlers.Inspector != nil {
		if err := track(registerQuery(nfquery.NewItemOwnerQuery(handlers.Inspector), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	if handlers.Matcher != nil {
		if err := track(registerQuery(nfquery.NewMatchAssetQuery(handlers.Matcher), runnerOpts...)); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func Dispatch[T any](ctx context.Context, msg T) error {
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

// DispatchWithResult dispatches msg and returns the value its command
// stored in the result collector.
func DispatchWithResult[T any, R any](ctx context.Context, msg T) (R, bool, error) {
	var zero R
	collector := command.NewResult[R]()
	if err := Dispatch(command.ContextWithResult(ctx, collector), msg); err != nil {
		return zero, false, err
	}
	value, ok := collector.Load()
	return value, ok, nil
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	if err := ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return commanddispatcher.Query[T, R](ctx, msg)
}

func registerCommand[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.register(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func registerQuery[T any, R any](
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if subscription == nil {
		return nil, fmt.Errorf("gocommand: subscribe query failed")
	}
	return subscription, nil
}
