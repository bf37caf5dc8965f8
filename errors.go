package memoexec

import (
	"errors"
	"fmt"
)

// ErrAlreadyCancelled means the token was cancelled before any work
// began; nothing was spawned and no state changed.
var ErrAlreadyCancelled = errors.New("memoexec; token already cancelled")

// ErrAborted means the token fired while an execution was
// outstanding; the subprocess was killed.
var ErrAborted = errors.New("memoexec; execution aborted")

// SpawnError means the command could not be started, or its process
// failed for some reason other than a non-zero exit.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return "memoexec; spawn failure; " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError means the command ran to completion and exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("memoexec; command exited with code %d", e.Code)
}
