package venue

import "fmt"

// FailureKind classifies terminal fetch failures.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport_error"
	FailureHTTP      FailureKind = "http_error"
	FailureException FailureKind = "exception"
	FailureUnknown   FailureKind = "unknown"
)

// FetchError is the failure arm of an Outcome.
type FetchError struct {
	Kind   FailureKind
	Status int    // HTTP status for FailureHTTP, 0 otherwise
	Detail string // response body or error text
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Kind == FailureHTTP {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// Outcome is the result of fetching one address: either a parsed body or a
// terminal FetchError, never both. FetchAll returns exactly one Outcome per
// requested address, positionally aligned with the input.
type Outcome struct {
	Address string
	Doc     Document      // set when the response body was a JSON object
	Items   []interface{} // set when the response body was a JSON array
	Err     *FetchError
}

// OK reports whether the fetch produced a usable body.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Fills parses the outcome's array body as trade fills. A failed or
// object-shaped outcome yields no fills.
func (o Outcome) Fills() []Fill {
	if !o.OK() || o.Items == nil {
		return nil
	}
	return ParseFills(o.Items)
}
