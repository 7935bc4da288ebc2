package isolation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInterrupted indicates the run was cancelled during an attempt. The
	// package must be left unrecorded.
	ErrInterrupted = errors.New("attempt interrupted")

	// ErrRedirectUnsupported indicates the platform cannot redirect the
	// standard file descriptors
	ErrRedirectUnsupported = errors.New("stdio redirection is not supported on this platform")
)

// panicMessage is used when a recovered panic value renders as nothing
const panicMessage = "attempt panicked"

// PanicError carries a value recovered from a panicking attempt
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	var msg string
	switch v := e.Value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		if v != nil {
			msg = fmt.Sprint(v)
		}
	}
	if msg == "" {
		return panicMessage
	}
	return "panic: " + msg
}

func deadlineMessage(d time.Duration) string {
	return fmt.Sprintf("attempt exceeded deadline of %s", d)
}
