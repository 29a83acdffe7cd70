package dispatcher

import "errors"

var (
	// ErrNoHandler is wrapped by results for names nothing routes.
	ErrNoHandler = errors.New("no handler for action")

	// ErrEmptyAction is returned for an action without a name.
	ErrEmptyAction = errors.New("action has no name")

	// ErrVetoed marks actions a pre-dispatch hook refused.
	ErrVetoed = errors.New("action vetoed by hook")

	// ErrPanic wraps a recovered handler panic.
	ErrPanic = errors.New("handler panicked")
)
