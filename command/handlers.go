package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-nonfungibles/core"
)

type TransferCommand struct {
	transactor core.AssetTransferrer
}

func NewTransferCommand(transactor core.AssetTransferrer) *TransferCommand {
	return &TransferCommand{transactor: transactor}
}

func (c *TransferCommand) Execute(ctx context.Context, msg TransferMessage) error {
	if c == nil || c.transactor == nil {
		return core.DependencyError("command: transfer transactor is required")
	}
	out, err := c.transactor.TransferAsset(ctx, msg.Asset, msg.From, msg.To, msg.Context)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// CheckInCommand commits an inbound teleport only after CanCheckIn
// accepted it.
type CheckInCommand struct {
	checker core.TeleportChecker
}

func NewCheckInCommand(checker core.TeleportChecker) *CheckInCommand {
	return &CheckInCommand{checker: checker}
}

func (c *CheckInCommand) Execute(ctx context.Context, msg CheckInMessage) error {
	if c == nil || c.checker == nil {
		return core.DependencyError("command: teleport checker is required")
	}
	if err := c.checker.CanCheckIn(ctx, msg.Origin, msg.Asset, msg.Context); err != nil {
		return err
	}
	c.checker.CheckIn(ctx, msg.Origin, msg.Asset, msg.Context)
	storeResult(ctx, core.MovedAssetsOf(msg.Asset))
	return nil
}

// CheckOutCommand commits an outbound teleport only after CanCheckOut
// accepted it.
type CheckOutCommand struct {
	checker core.TeleportChecker
}

func NewCheckOutCommand(checker core.TeleportChecker) *CheckOutCommand {
	return &CheckOutCommand{checker: checker}
}

func (c *CheckOutCommand) Execute(ctx context.Context, msg CheckOutMessage) error {
	if c == nil || c.checker == nil {
		return core.DependencyError("command: teleport checker is required")
	}
	if err := c.checker.CanCheckOut(ctx, msg.Destination, msg.Asset, msg.Context); err != nil {
		return err
	}
	c.checker.CheckOut(ctx, msg.Destination, msg.Asset, msg.Context)
	storeResult(ctx, core.MovedAssetsOf(msg.Asset))
	return nil
}

type DepositCommand struct {
	mutator core.AssetMutator
}

func NewDepositCommand(mutator core.AssetMutator) *DepositCommand {
	return &DepositCommand{mutator: mutator}
}

func (c *DepositCommand) Execute(ctx context.Context, msg DepositMessage) error {
	if c == nil || c.mutator == nil {
		return core.DependencyError("command: asset mutator is required")
	}
	return c.mutator.DepositAsset(ctx, msg.Asset, msg.Who, msg.Context)
}

type WithdrawCommand struct {
	mutator core.AssetMutator
}

func NewWithdrawCommand(mutator core.AssetMutator) *WithdrawCommand {
	return &WithdrawCommand{mutator: mutator}
}

func (c *WithdrawCommand) Execute(ctx context.Context, msg WithdrawMessage) error {
	if c == nil || c.mutator == nil {
		return core.DependencyError("command: asset mutator is required")
	}
	out, err := c.mutator.WithdrawAsset(ctx, msg.Asset, msg.Who, msg.Context)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
