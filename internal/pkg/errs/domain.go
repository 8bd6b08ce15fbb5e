package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrForbidden            = errors.New("action is forbidden")
	ErrStaleRead            = errors.New("stale read")
	ErrCorrelationAmbiguity = errors.New("correlation is ambiguous")
	ErrNetworkUnavailable   = errors.New("network is unavailable")
)

// InvalidTransitionError is returned when a status change is rejected by the
// order state machine. It is surfaced to the acting client and never retried.
type InvalidTransitionError struct {
	From  string
	To    string
	Cause error
}

func NewInvalidTransitionError(from, to string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To), e.Cause)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func (e *InvalidTransitionError) Is(target error) bool {
	return causeIs(e.Cause, target)
}

// ForbiddenError is returned when the actor role may not perform an action.
type ForbiddenError struct {
	Actor  string
	Action string
}

func NewForbiddenError(actor, action string) *ForbiddenError {
	return &ForbiddenError{Actor: actor, Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s cannot %s", ErrForbidden, sanitize(e.Actor), e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// StaleReadError reports a snapshot older than a version already observed.
type StaleReadError struct {
	ParamName string
	Seen      int64
	Latest    int64
}

func NewStaleReadError(paramName string, seen, latest int64) *StaleReadError {
	return &StaleReadError{ParamName: paramName, Seen: seen, Latest: latest}
}

func (e *StaleReadError) Error() string {
	return fmt.Sprintf("%s: %s version %d is older than %d", ErrStaleRead, e.ParamName, e.Seen, e.Latest)
}

func (e *StaleReadError) Unwrap() error {
	return ErrStaleRead
}

// CorrelationAmbiguityError reports more than one active delivery run
// claiming the same order. It is logged, never returned to clients.
type CorrelationAmbiguityError struct {
	OrderID    string
	Candidates int
	Chosen     string
}

func NewCorrelationAmbiguityError(orderID string, candidates int, chosen string) *CorrelationAmbiguityError {
	return &CorrelationAmbiguityError{OrderID: orderID, Candidates: candidates, Chosen: chosen}
}

func (e *CorrelationAmbiguityError) Error() string {
	return fmt.Sprintf("%s: %d active runs claim order %s, using %s",
		ErrCorrelationAmbiguity, e.Candidates, e.OrderID, e.Chosen)
}

func (e *CorrelationAmbiguityError) Unwrap() error {
	return ErrCorrelationAmbiguity
}

// NetworkUnavailableError wraps a failed one-shot read. Callers may retry.
type NetworkUnavailableError struct {
	Operation string
	Cause     error
}

func NewNetworkUnavailableError(operation string, cause error) *NetworkUnavailableError {
	return &NetworkUnavailableError{Operation: operation, Cause: cause}
}

func (e *NetworkUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrNetworkUnavailable, e.Operation), e.Cause)
}

func (e *NetworkUnavailableError) Unwrap() error {
	return ErrNetworkUnavailable
}

func (e *NetworkUnavailableError) Is(target error) bool {
	return causeIs(e.Cause, target)
}
