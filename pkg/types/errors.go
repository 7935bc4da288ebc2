package types

import (
	"errors"
	"fmt"
)

// ParseError reports a package specifier that does not match the
// name[=version] grammar. The run continues without it.
type ParseError struct {
	Spec string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid package name / version %q, try `foo` or `foo=0.1`", e.Spec)
}

// SetupError reports a failure preparing the shared environment of a run.
// It is always fatal.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed: %s: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError wraps err as a fatal setup failure for step
func NewSetupError(step string, err error) error {
	return &SetupError{Step: step, Err: err}
}

// IsSetupError reports whether err is, or wraps, a SetupError
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}
