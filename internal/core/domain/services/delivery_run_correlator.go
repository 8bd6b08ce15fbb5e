package services

import (
	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
)

// Correlation links an order to the delivery run carrying it.
type Correlation struct {
	// Run is nil when no run claims the order.
	Run *deliveryrun.DeliveryRun
	// Active is true when Run is still in progress.
	Active bool
	// Position is the last checkpoint of Run; nil means position unknown.
	Position *deliveryrun.Checkpoint
	// DistanceMeters is the live distance while active, the finalized one afterwards.
	DistanceMeters float64
	// Candidates is the number of active runs that claimed the order.
	Candidates int
}

func (c Correlation) Found() bool {
	return c.Run != nil
}

func (c Correlation) Ambiguous() bool {
	return c.Candidates > 1
}

// Ambiguity returns a CorrelationAmbiguityError when more than one active run
// claimed the order. Callers log it; it never fails a read.
func (c Correlation) Ambiguity(orderID kernel.UUID) error {
	if !c.Ambiguous() {
		return nil
	}
	return errs.NewCorrelationAmbiguityError(orderID.String(), c.Candidates, c.Run.ID().String())
}

// DeliveryRunCorrelator finds the courier run carrying an order.
//
// Business rules:
//   - only active runs whose membership contains the order are candidates
//   - with several candidates the most recently updated wins and the ambiguity
//     is reported on the result
//   - with no active candidate, the most recently updated completed run that
//     carried the order is returned so its final distance stays visible
type DeliveryRunCorrelator struct{}

func NewDeliveryRunCorrelator() DeliveryRunCorrelator {
	return DeliveryRunCorrelator{}
}

func (c DeliveryRunCorrelator) Correlate(orderID kernel.UUID, runs []*deliveryrun.DeliveryRun) Correlation {
	var (
		active, completed *deliveryrun.DeliveryRun
		candidates        int
	)

	for _, run := range runs {
		if run.Validate() != nil || !run.ContainsOrder(orderID) {
			continue
		}
		if run.IsActive() {
			candidates++
			active = latest(active, run)
		} else {
			completed = latest(completed, run)
		}
	}

	chosen := active
	if chosen == nil {
		chosen = completed
	}
	if chosen == nil {
		return Correlation{}
	}

	corr := Correlation{
		Run:            chosen,
		Active:         chosen.IsActive(),
		DistanceMeters: chosen.Distance(),
		Candidates:     candidates,
	}
	if cp, ok := chosen.LastCheckpoint(); ok {
		corr.Position = &cp
	}
	return corr
}

func latest(current, candidate *deliveryrun.DeliveryRun) *deliveryrun.DeliveryRun {
	if current == nil || candidate.UpdatedAt().After(current.UpdatedAt()) {
		return candidate
	}
	return current
}
