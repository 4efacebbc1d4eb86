package graph

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConnection means the backend could not be reached or refused the
	// session.
	ErrConnection = errors.New("graph backend connection failed")

	// ErrMalformedQuery means the backend rejected the query itself.
	ErrMalformedQuery = errors.New("malformed graph query")
)

// QueryError carries the backend diagnostic together with its class
// (ErrConnection or ErrMalformedQuery).
type QueryError struct {
	Backend string
	Kind    error
	Err     error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func connectionError(backend string, err error) error {
	return &QueryError{Backend: backend, Kind: ErrConnection, Err: err}
}

func malformedError(backend string, err error) error {
	return &QueryError{Backend: backend, Kind: ErrMalformedQuery, Err: err}
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Describe renders err for inclusion in an observation. Connection
// failures are prefixed so the model can tell them from query mistakes.
func Describe(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) && errors.Is(qe.Kind, ErrConnection) {
		return fmt.Sprintf("connection failed: %v", qe.Err)
	}
	return err.Error()
}
