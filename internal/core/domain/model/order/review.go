package order

import (
	"fmt"
	"strings"
	"time"

	"pharmadelivery/internal/pkg/errs"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewEligible reports whether the one-time review prompt should be shown.
func (o *Order) ReviewEligible() bool {
	return o.status == Delivered && !o.reviewRequested
}

// SubmitReview stores the rating and comment and resolves the prompt in one
// step. Once the prompt is resolved, by a submission or a decline, further
// calls are no-ops and report applied == false.
func (o *Order) SubmitReview(rating int, comment string, at time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if o.reviewRequested {
		return false, nil
	}
	if err := o.checkReviewable(at); err != nil {
		return false, err
	}
	if rating < MinRating || rating > MaxRating {
		return false, errs.NewValueIsOutOfRangeError("rating", rating, MinRating, MaxRating)
	}

	o.review = &Review{
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
		Date:    at.UTC(),
	}
	o.reviewRequested = true
	o.touch(at)
	return true, nil
}

// DeclineReview resolves the prompt without a rating.
func (o *Order) DeclineReview(at time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if o.reviewRequested {
		return false, nil
	}
	if err := o.checkReviewable(at); err != nil {
		return false, err
	}

	o.reviewRequested = true
	o.touch(at)
	return true, nil
}

func (o *Order) checkReviewable(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("reviewDate")
	}
	if o.status != Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"review",
			fmt.Errorf("%s orders cannot be reviewed", o.status),
		)
	}
	return nil
}
