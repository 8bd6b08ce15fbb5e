package commands

import (
	"errors"
	"strings"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/guard"
)

var (
	ErrSubmitReviewCommandIsNotConstructed = errors.New(
		"SubmitReviewCommand must be created via NewSubmitReviewCommand constructor",
	)
	ErrDeclineReviewCommandIsNotConstructed = errors.New(
		"DeclineReviewCommand must be created via NewDeclineReviewCommand constructor",
	)
)

// SubmitReviewCommand carries the customer's rating. The rating range is
// checked by the order so that a resolved prompt stays a silent no-op.
type SubmitReviewCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	rating  int
	comment string

	guard guard.ConstructorGuard
}

func NewSubmitReviewCommand(orderID kernel.UUID, rating int, comment string) (SubmitReviewCommand, error) {
	if err := orderID.Validate(); err != nil {
		return SubmitReviewCommand{}, err
	}

	return SubmitReviewCommand{
		orderID: orderID,
		rating:  rating,
		comment: strings.TrimSpace(comment),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitReviewCommand) Validate() error {
	return c.guard.Validate(ErrSubmitReviewCommandIsNotConstructed)
}

func (c SubmitReviewCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SubmitReviewCommand) Rating() int {
	return c.rating
}

func (c SubmitReviewCommand) Comment() string {
	return c.comment
}

// DeclineReviewCommand dismisses the review prompt without a rating.
type DeclineReviewCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewDeclineReviewCommand(orderID kernel.UUID) (DeclineReviewCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DeclineReviewCommand{}, err
	}
	return DeclineReviewCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c DeclineReviewCommand) Validate() error {
	return c.guard.Validate(ErrDeclineReviewCommandIsNotConstructed)
}

func (c DeclineReviewCommand) OrderID() kernel.UUID {
	return c.orderID
}
