package nonfungibles

import (
	"context"
	"fmt"

	nfcommand "github.com/goliatone/go-nonfungibles/command"
	"github.com/goliatone/go-nonfungibles/core"
	nfquery "github.com/goliatone/go-nonfungibles/query"
)

// FacadeTransactor is the transactor surface the facade drives.
type FacadeTransactor interface {
	core.Transactor
	Outstanding(ctx context.Context) ([]core.ItemRef, error)
	Policy() core.MintPolicy
}

type Commands struct {
	Transfer *nfcommand.TransferCommand
	CheckIn  *nfcommand.CheckInCommand
	CheckOut *nfcommand.CheckOutCommand
	Deposit  *nfcommand.DepositCommand
	Withdraw *nfcommand.WithdrawCommand
}

// Queries holds the read handlers. ItemOwner and MatchAsset are nil unless
// an inspector and matcher were supplied.
type Queries struct {
	ItemOwner    *nfquery.ItemOwnerQuery
	TrackingMode *nfquery.TrackingModeQuery
	Outstanding  *nfquery.OutstandingQuery
	MatchAsset   *nfquery.MatchAssetQuery
}

type Facade struct {
	transactor FacadeTransactor
	commands   Commands
	queries    Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	inspector core.Inspector
	matcher   core.Matcher
}

func WithInspector(inspector core.Inspector) FacadeOption {
	return func(options *facadeOptions) {
		options.inspector = inspector
	}
}

func WithMatcher(matcher core.Matcher) FacadeOption {
	return func(options *facadeOptions) {
		options.matcher = matcher
	}
}

func NewFacade(transactor FacadeTransactor, opts ...FacadeOption) (*Facade, error) {
	if transactor == nil {
		return nil, fmt.Errorf("nonfungibles: transactor is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{transactor: transactor}
	facade.commands = Commands{
		Transfer: nfcommand.NewTransferCommand(transactor),
		CheckIn:  nfcommand.NewCheckInCommand(transactor),
		CheckOut: nfcommand.NewCheckOutCommand(transactor),
		Deposit:  nfcommand.NewDepositCommand(transactor),
		Withdraw: nfcommand.NewWithdrawCommand(transactor),
	}
	facade.queries = Queries{
		TrackingMode: nfquery.NewTrackingModeQuery(transactor.Policy()),
		Outstanding:  nfquery.NewOutstandingQuery(transactor),
	}
	if cfg.inspector != nil {
		facade.queries.ItemOwner = nfquery.NewItemOwnerQuery(cfg.inspector)
	}
	if cfg.matcher != nil {
		facade.queries.MatchAsset = nfquery.NewMatchAssetQuery(cfg.matcher)
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Transactor() FacadeTransactor {
	if f == nil {
		return nil
	}
	return f.transactor
}
