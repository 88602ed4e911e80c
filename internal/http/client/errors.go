package client

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-admin/internal/types"
)

var (
	// ErrNotFound is returned by Get when the response holds no record.
	ErrNotFound = errors.New("record not found")

	// ErrUnsupported is returned, without a request, for an operation the
	// resource's route table does not list.
	ErrUnsupported = errors.New("operation not supported by the backend")
)

// TransportError is a request that never produced a usable response:
// the connection failed, the body could not be read, or it was not the
// JSON we expected.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError is a response with a non-2xx status. The body is not
// trusted; Message holds its "error"/"message" field when it had one.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

func unsupported(res Resource, op Op) error {
	return fmt.Errorf("%s %s: %w", op, res.Kind.Plural(), ErrUnsupported)
}

func missingID(res Resource) error {
	return types.MissingID(res.Kind)
}
