package order

import (
	"fmt"
	"strings"
	"time"

	"pharmadelivery/internal/pkg/errs"
)

// TransitionPolicy decides how strictly the canonical sequence is enforced.
type TransitionPolicy int

const (
	// PermissivePolicy accepts any move that does not leave a terminal state,
	// including skipped or repeated steps. This is the default: operations
	// favor availability over strict sequencing.
	PermissivePolicy TransitionPolicy = iota

	// StrictPolicy only accepts the canonical next step or a cancellation.
	StrictPolicy
)

// TransitionRequest is the input of ApplyTransition.
type TransitionRequest struct {
	Target Status
	Actor  Actor
	Reason string
	Note   string
	At     time.Time
}

// ApplyTransition validates and applies a status change.
//
// Rules, checked in order:
//   - the target and the actor must be valid
//   - nothing leaves Delivered, whoever asks
//   - cancelling requires a non-blank reason
//   - from Cancelled only the staff reactivation to InPreparation is accepted
//   - the actor must be allowed to request the target
//   - under StrictPolicy only the canonical next step (or a cancel) is accepted
//
// On success status and lastStatusUpdate change and exactly one entry is
// appended to the history. Cancelling keeps the courier assignment for audit.
// Rejections wrap errs.ErrInvalidTransition or errs.ErrForbidden.
func (o *Order) ApplyTransition(req TransitionRequest, policy TransitionPolicy) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := req.Target.Validate(); err != nil {
		return errs.NewInvalidTransitionError(o.status.String(), req.Target.String(), err)
	}
	if err := req.Actor.Validate(); err != nil {
		return err
	}
	if req.At.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	if o.status == Delivered {
		return errs.NewInvalidTransitionError(o.status.String(), req.Target.String(), ErrOrderIsDelivered)
	}

	reason := strings.TrimSpace(req.Reason)
	if req.Target == Cancelled && reason == "" {
		return errs.NewInvalidTransitionError(o.status.String(), req.Target.String(), ErrReasonIsRequired)
	}

	if o.status == Cancelled {
		if req.Target == InPreparation {
			return o.Reactivate(req.Actor, req.Note, req.At)
		}
		return errs.NewInvalidTransitionError(o.status.String(), req.Target.String(), ErrOrderIsCancelled)
	}

	if !req.Actor.CanRequest(req.Target) {
		return errs.NewForbiddenError(req.Actor.String(), "move an order to "+req.Target.String())
	}

	if policy == StrictPolicy && req.Target != Cancelled {
		if next, ok := o.status.Next(); !ok || next != req.Target {
			return errs.NewInvalidTransitionError(o.status.String(), req.Target.String(), ErrTransitionSkipsStep)
		}
	}

	entry, err := NewHistoryEntry(req.Target, req.At, req.Actor, reason, strings.TrimSpace(req.Note))
	if err != nil {
		return err
	}

	o.record(entry)
	if req.Target == Cancelled {
		o.cancelReason = reason
	}
	return nil
}

// Reactivate reverses a cancellation. It is an explicit staff override, not a
// forward transition: the order returns to InPreparation, the courier
// assignment and vehicle are cleared and one history entry carrying
// ReactivationNote is appended.
func (o *Order) Reactivate(actor Actor, note string, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.CanReactivate() {
		return errs.NewForbiddenError(actor.String(), "reactivate an order")
	}
	if o.status != Cancelled {
		return errs.NewInvalidTransitionError(o.status.String(), InPreparation.String(), ErrOrderIsNotCancelled)
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}

	fullNote := ReactivationNote
	if note = strings.TrimSpace(note); note != "" {
		fullNote = fmt.Sprintf("%s: %s", ReactivationNote, note)
	}

	entry, err := NewHistoryEntry(InPreparation, at, actor, "", fullNote)
	if err != nil {
		return err
	}

	o.record(entry)
	o.assignment = nil
	o.cancelReason = ""
	return nil
}

func (o *Order) record(entry HistoryEntry) {
	stamped := o.history.append(entry)
	o.status = stamped.Status()
	o.lastStatusUpdate = stamped.Timestamp()
	o.touch(stamped.Timestamp())
}
