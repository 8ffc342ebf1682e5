package gateway

import (
	"errors"
	"fmt"
)

// Sentinel kinds for gateway failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrTransport indicates no response was received (dial, TLS, timeout, cancel).
	ErrTransport = errors.New("transport failure")

	// ErrServer indicates the backend responded with a failure.
	ErrServer = errors.New("server failure")

	// ErrDecode indicates a success response whose body could not be decoded.
	ErrDecode = errors.New("malformed response")
)

// CodeNoDocuments is the structured error code for "nothing indexed yet".
// Backends that send it spare clients from matching on detail text.
const CodeNoDocuments = "no_documents"

// Error is a classified gateway failure.
// It preserves the underlying error in the chain for inspection via errors.As.
type Error struct {
	// Kind is the sentinel error for classification (e.g. ErrServer).
	Kind error
	// Op is the operation that failed (e.g. "upload").
	Op string
	// Status is the HTTP status code; zero for transport failures.
	Status int
	// StatusText is the HTTP reason phrase, when known.
	StatusText string
	// Detail is the backend's human-readable error detail, verbatim.
	Detail string
	// Code is the backend's structured error code, when sent.
	Code string
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("%s: %v: status %d: %s", e.Op, e.Kind, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s: %v: status %d", e.Op, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewTransportError classifies err as a failure to get any response.
func NewTransportError(op string, err error) *Error {
	return &Error{Kind: ErrTransport, Op: op, Err: err}
}

// NewServerError builds a server-reported failure.
func NewServerError(op string, status int, statusText, detail, code string) *Error {
	return &Error{
		Kind:       ErrServer,
		Op:         op,
		Status:     status,
		StatusText: statusText,
		Detail:     detail,
		Code:       code,
	}
}

// NewDecodeError classifies a body that could not be decoded.
func NewDecodeError(op string, status int, err error) *Error {
	return &Error{Kind: ErrDecode, Op: op, Status: status, Err: err}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}
