// Package kernel provides the value objects shared by every aggregate of the
// pharmacy delivery domain:
//   - UUID: identifiers for orders, deliverymen, delivery runs and pharmacy units
//   - Location: a validated latitude/longitude pair with Haversine distance
//   - Money: a non-negative decimal amount with its display form
//
// Value objects are immutable and validate on construction; zero values fail
// Validate so that unconstructed instances are caught early.
package kernel
