package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[TransferMessage] = (*TransferCommand)(nil)
	_ gocmd.Commander[CheckInMessage]  = (*CheckInCommand)(nil)
	_ gocmd.Commander[CheckOutMessage] = (*CheckOutCommand)(nil)
	_ gocmd.Commander[DepositMessage]  = (*DepositCommand)(nil)
	_ gocmd.Commander[WithdrawMessage] = (*WithdrawCommand)(nil)
)
