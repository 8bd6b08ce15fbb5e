package deliveryrun

import (
	"fmt"

	"pharmadelivery/internal/pkg/errs"
)

// Status of a delivery run.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	if s != StatusActive && s != StatusCompleted {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a run status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}
