package client

import (
	"errors"
	"fmt"
)

// Error kinds, used as log fields and metric labels.
const (
	KindTransport = "transport"
	KindSchema    = "schema"
)

// TransportError covers network failures and non-2xx responses.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code: %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError means the response body does not match the expected shape.
type SchemaError struct {
	Endpoint string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %v", e.Endpoint, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// LoadError is the single failure a fetch cycle reports, whichever read failed.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "load restaurant data: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// Kind classifies err as KindTransport or KindSchema. Anything else is
// reported as transport, since it did not come from decoding a body.
func Kind(err error) string {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return KindSchema
	}
	return KindTransport
}

// Endpoint returns the path of the request that failed, if known.
func Endpoint(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Endpoint
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Endpoint
	}
	return ""
}
