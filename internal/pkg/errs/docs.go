// Package errs provides the typed errors shared by the pharmacy delivery service.
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g., ErrValueIsRequired) for errors.Is
//   - a struct carrying the details of the failure
//   - constructor functions with and without cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Validation errors (ValueIsRequired, ValueIsInvalid, ValueIsOutOfRange),
// lookup errors (ObjectNotFound) and optimistic concurrency errors
// (VersionIsInvalid) are used by every layer. The order lifecycle adds
// InvalidTransition, Forbidden, StaleRead, CorrelationAmbiguity and
// NetworkUnavailable, which the HTTP adapter maps to status codes.
package errs
