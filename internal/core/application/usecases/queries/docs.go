// Package queries contains the read side of the service.
//
// GetOrderTrackingQueryHandler loads the order aggregate and its runs through
// the repositories, derives timing and correlation and projects the result
// per View; it also feeds the realtime bridge. The listing, tip and audit
// queries read tables directly through gorm without building aggregates.
//
// One-shot reads that a person waits on run under a timeout and report
// errs.ErrNetworkUnavailable instead of hanging.
package queries
