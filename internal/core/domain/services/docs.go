// Package services provides the domain services deriving presentation data
// from the order and delivery run aggregates.
//
// The package includes:
//   - DeliveryTimingCalculator: per-stage and total durations over the status history
//   - DeliveryRunCorrelator: the run carrying an order, its live position and distance
//
// Both are pure and are re-run on every read and every change notification so
// the derived values never go stale relative to the stored records.
package services
