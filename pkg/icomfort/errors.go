package icomfort

import (
	"errors"
	"fmt"
)

// ErrNoSetPointForMode is returned by SetSetPoint when the current operating mode has no single set point
// (Off, HeatAndCool). Use SetSetPointRange instead.
var ErrNoSetPointForMode = errors.New("operating mode has no single set point")

// ConnectionError is returned by New when the client could not resolve the system or perform its initial pull.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "icomfort: connect: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RemoteError is returned when a call to the iComfort service fails.
type RemoteError struct {
	// Op is the failed operation, e.g. "pull status"
	Op string
	// StatusCode is the HTTP status code returned by the service. Zero if the call did not get a response.
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("icomfort: %s: %d: %s", e.Op, e.StatusCode, e.Err.Error())
	}
	return fmt.Sprintf("icomfort: %s: %s", e.Op, e.Err.Error())
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
