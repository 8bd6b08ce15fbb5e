package commands

import (
	"errors"

	"pharmadelivery/internal/pkg/guard"
)

var ErrRefreshRunDistancesCommandIsNotConstructed = errors.New(
	"RefreshRunDistancesCommand must be created via NewRefreshRunDistancesCommand constructor",
)

// RefreshRunDistancesCommand stores the live distance of every active run.
type RefreshRunDistancesCommand struct {
	guard guard.ConstructorGuard
}

func NewRefreshRunDistancesCommand() RefreshRunDistancesCommand {
	return RefreshRunDistancesCommand{guard: guard.NewConstructorGuard()}
}

func (c RefreshRunDistancesCommand) Validate() error {
	return c.guard.Validate(ErrRefreshRunDistancesCommandIsNotConstructed)
}
