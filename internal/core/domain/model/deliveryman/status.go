package deliveryman

import (
	"fmt"

	"pharmadelivery/internal/pkg/errs"
)

// Status is the duty state of a deliveryman.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusDelivering Status = "delivering"
	StatusOffDuty    Status = "off_duty"
)

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s Status) Validate() error {
	switch s {
	case StatusAvailable, StatusDelivering, StatusOffDuty:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a duty status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}
