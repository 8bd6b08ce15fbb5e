// Package deliveryrun models the courier movement log: a DeliveryRun claims
// the orders carried on one trip and collects the GPS checkpoints reported
// while the trip is active.
//
// Orders never store a run id. The run-to-order link is a membership query
// resolved by the domain correlator.
package deliveryrun
