package command

import "github.com/goliatone/go-nonfungibles/core"

const (
	TypeTransfer = "nonfungibles.command.transfer"
	TypeCheckIn  = "nonfungibles.command.teleport.check_in"
	TypeCheckOut = "nonfungibles.command.teleport.check_out"
	TypeDeposit  = "nonfungibles.command.deposit"
	TypeWithdraw = "nonfungibles.command.withdraw"
)

type TransferMessage struct {
	Asset   core.Asset
	From    core.Location
	To      core.Location
	Context core.ExecutionContext
}

func (TransferMessage) Type() string { return TypeTransfer }

// Validate checks the asset only. Any location, Here included, is left to
// the account resolver.
func (m TransferMessage) Validate() error {
	return validateAsset(m.Asset)
}

// CheckInMessage drives an inbound teleport: validation, then commit.
type CheckInMessage struct {
	Origin  core.Location
	Asset   core.Asset
	Context core.ExecutionContext
}

func (CheckInMessage) Type() string { return TypeCheckIn }

func (m CheckInMessage) Validate() error {
	return validateAsset(m.Asset)
}

// CheckOutMessage drives an outbound teleport: validation, then commit.
type CheckOutMessage struct {
	Destination core.Location
	Asset       core.Asset
	Context     core.ExecutionContext
}

func (CheckOutMessage) Type() string { return TypeCheckOut }

func (m CheckOutMessage) Validate() error {
	return validateAsset(m.Asset)
}

type DepositMessage struct {
	Asset   core.Asset
	Who     core.Location
	Context *core.ExecutionContext
}

func (DepositMessage) Type() string { return TypeDeposit }

func (m DepositMessage) Validate() error {
	return validateAsset(m.Asset)
}

type WithdrawMessage struct {
	Asset   core.Asset
	Who     core.Location
	Context *core.ExecutionContext
}

func (WithdrawMessage) Type() string { return TypeWithdraw }

func (m WithdrawMessage) Validate() error {
	return validateAsset(m.Asset)
}

func validateAsset(asset core.Asset) error {
	if !asset.Fun.NonFungible() {
		return core.FieldValidationError("command", "asset", "non-fungible instance is required")
	}
	if asset.Fun.Instance.Kind == core.InstanceUndefined || asset.Fun.Instance.Kind == "" {
		return core.FieldValidationError("command", "asset", "asset instance is undefined")
	}
	return nil
}
