package script

import "errors"

var (
	// ErrNoSteps is returned for scripts without steps.
	ErrNoSteps = errors.New("script has no steps")

	// ErrUnknownAction is wrapped by validation failures for action names
	// no handler claims.
	ErrUnknownAction = errors.New("unknown action")

	// ErrStepFailed is wrapped when a step returns an error result.
	ErrStepFailed = errors.New("step failed")

	// ErrExpectation is wrapped when a step's result does not match expect.
	ErrExpectation = errors.New("expectation not met")
)
