// Package order contains the Order aggregate and its lifecycle state machine.
//
// The aggregate owns the append-only status history ledger. Transitions are
// validated by ApplyTransition (role gate, terminal states, mandatory cancel
// reason, optional strict sequencing) and Reactivate, the staff-only escape
// from Cancelled. The one-time review prompt is resolved by SubmitReview or
// DeclineReview.
//
// Nothing in this package performs I/O or reads the clock; timestamps are
// supplied by the callers.
package order
