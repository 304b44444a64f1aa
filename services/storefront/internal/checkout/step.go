package checkout

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

// Step is a checkout state.
type Step string

const (
	StepInformation Step = "information"
	StepShipping    Step = "shipping"
	StepPayment     Step = "payment"
	StepConfirmed   Step = "confirmed"
)

// Steps lists the navigable steps in order. Confirmed is terminal and not
// navigable.
var Steps = []Step{StepInformation, StepShipping, StepPayment}

var stepIndex = map[Step]int{
	StepInformation: 0,
	StepShipping:    1,
	StepPayment:     2,
	StepConfirmed:   3,
}

// forward holds the only transitions that move a flow ahead.
var forward = map[Step]Step{
	StepInformation: StepShipping,
	StepShipping:    StepPayment,
	StepPayment:     StepConfirmed,
}

// ErrIllegalTransition is wrapped by errors returned for moves the flow does
// not allow from its current step.
var ErrIllegalTransition = errors.New("illegal checkout transition")

// ParseStep accepts a step name.
func ParseStep(s string) (Step, error) {
	step := Step(s)
	if _, ok := stepIndex[step]; !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown checkout step %q", s))
	}
	return step, nil
}

func illegal(from, to Step) error {
	return &apperrors.AppError{
		Code:    "ILLEGAL_TRANSITION",
		Message: fmt.Sprintf("cannot move checkout from %s to %s", from, to),
		Status:  http.StatusConflict,
		Err:     fmt.Errorf("%w: %w", ErrIllegalTransition, apperrors.ErrConflict),
	}
}

// canAdvance reports whether from -> to is a forward transition.
func canAdvance(from, to Step) bool {
	return forward[from] == to
}

// canGoBack reports whether a flow at from may navigate to to: only to an
// earlier or the same navigable step, and never out of confirmed.
func canGoBack(from, to Step) bool {
	if from == StepConfirmed || to == StepConfirmed {
		return false
	}
	return stepIndex[to] <= stepIndex[from]
}
