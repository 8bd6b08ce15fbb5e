// Package deliveryman models the couriers employed by pharmacy units: their
// duty state, the order they are currently carrying and the Pix key shown to
// customers who want to tip.
//
// A deliveryman is occupied when an order assigned to them leaves the
// pharmacy and released when that order is delivered, cancelled or
// reactivated.
package deliveryman
