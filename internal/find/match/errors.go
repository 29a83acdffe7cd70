package match

import "strings"

// PatternError reports a query that could not be compiled.
type PatternError struct {
	Query string
	Err   error
}

// Error returns the compiler's message without the generic regexp prefix.
func (e *PatternError) Error() string {
	return strings.TrimPrefix(e.Err.Error(), "error parsing regexp: ")
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
