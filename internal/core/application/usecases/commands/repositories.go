// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"pharmadelivery/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	DeliverymanRepoFactory interface {
		DeliverymanRepository() ports.DeliverymanRepository
	}

	DeliveryRunRepoFactory interface {
		DeliveryRunRepository() ports.DeliveryRunRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// DeliverymanUoW manages transactions for deliveryman-only operations.
	DeliverymanUoW interface {
		TxManager
		DeliverymanRepoFactory
	}

	DeliverymanUoWFactory interface {
		Create() DeliverymanUoW
	}

	// DeliveryRunUoW manages transactions for run-only operations.
	DeliveryRunUoW interface {
		TxManager
		DeliveryRunRepoFactory
	}

	DeliveryRunUoWFactory interface {
		Create() DeliveryRunUoW
	}

	// UoW spans every aggregate. Used when a command touches orders together
	// with deliverymen or runs.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   deliverymanRepo := uow.DeliverymanRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		DeliverymanRepoFactory
		DeliveryRunRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
