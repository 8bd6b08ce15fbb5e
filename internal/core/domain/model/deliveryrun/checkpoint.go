package deliveryrun

import (
	"errors"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var ErrCheckpointIsNotConstructed = errors.New("Checkpoint must be created via NewCheckpoint constructor")

// Checkpoint is one GPS fix reported by the courier app.
type Checkpoint struct {
	location  kernel.Location
	timestamp time.Time
	guard     guard.ConstructorGuard
}

func NewCheckpoint(latitude, longitude float64, timestamp time.Time) (Checkpoint, error) {
	location, err := kernel.NewLocation(latitude, longitude)

	var tsErr error
	if timestamp.IsZero() {
		tsErr = errs.NewValueIsRequiredError("timestamp")
	}
	if err = errors.Join(err, tsErr); err != nil {
		return Checkpoint{}, err
	}

	return Checkpoint{
		location:  location,
		timestamp: timestamp.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c Checkpoint) Validate() error {
	return c.guard.Validate(ErrCheckpointIsNotConstructed)
}

func (c Checkpoint) Location() kernel.Location {
	return c.location
}

func (c Checkpoint) Latitude() float64 {
	return c.location.Latitude()
}

func (c Checkpoint) Longitude() float64 {
	return c.location.Longitude()
}

func (c Checkpoint) Timestamp() time.Time {
	return c.timestamp
}
