package extract

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// Kind classifies a failed extraction attempt.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindService      Kind = "service"
	KindUnexpected   Kind = "unexpected"
)

// Result is the outcome of one submission: either Success or Failure.
type Result interface {
	isResult()
}

// Success carries the identifier of the newly created record. The identifier
// is opaque and never interpreted.
type Success struct {
	RecordID string
}

// Failure carries a human-readable message that is shown verbatim.
// Status is the HTTP status or gRPC code when the service answered, else 0.
type Failure struct {
	Kind    Kind
	Message string
	Status  int
}

func (Success) isResult() {}
func (Failure) isResult() {}

func (f Failure) Error() string { return f.Message }

// Unwrap lets callers match every failure against common.ErrTransientSubmission.
func (f Failure) Unwrap() error { return common.ErrTransientSubmission }

// Payload is what a transport puts on the wire.
type Payload struct {
	Filename  string
	MediaType string
	Content   []byte
	SHA256    string
}

// Transport performs exactly one request and returns the raw record identifier.
// Errors should be *TransportError so the client can classify them.
type Transport interface {
	Extract(ctx context.Context, p Payload) (string, error)
}

// TransportError is a classified transport failure.
type TransportError struct {
	Kind    Kind
	Status  int
	Message string // service-provided text, service kind only
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	default:
		return string(e.Kind)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func connectivityError(err error) *TransportError {
	return &TransportError{Kind: KindConnectivity, Err: err}
}

func serviceError(status int, message string) *TransportError {
	return &TransportError{Kind: KindService, Status: status, Message: message}
}

func unexpectedError(err error) *TransportError {
	return &TransportError{Kind: KindUnexpected, Err: err}
}
